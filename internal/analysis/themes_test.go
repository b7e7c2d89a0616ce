package analysis_test

import (
	"testing"

	"review_dashboard/internal/analysis"
	"review_dashboard/internal/domain"
)

func texts(ss ...string) []domain.Review {
	out := make([]domain.Review, len(ss))
	for i, s := range ss {
		out[i] = domain.Review{Text: s}
	}
	return out
}

func TestExtractThemes_KeywordsNeedTwoOccurrences(t *testing.T) {
	themes := analysis.ExtractThemes(texts(
		"The pasta was amazing",
		"Amazing pasta again",
		"A singleton word: carbonara",
	), 10)

	byLabel := map[string]domain.Theme{}
	for _, th := range themes {
		byLabel[th.Theme] = th
	}
	if th, ok := byLabel["pasta"]; !ok || th.Frequency != 2 || th.Type != "keyword" {
		t.Fatalf("expected pasta keyword x2, got %+v", themes)
	}
	if _, ok := byLabel["carbonara"]; ok {
		t.Fatalf("single-occurrence word must not be a theme: %+v", themes)
	}
	if _, ok := byLabel["the"]; ok {
		t.Fatalf("stopword leaked into themes: %+v", themes)
	}
}

func TestExtractThemes_Phrases(t *testing.T) {
	themes := analysis.ExtractThemes(texts(
		"Friendly service and great food",
		"friendly service, shame about the music",
	), 10)

	found := false
	for _, th := range themes {
		if th.Theme == "friendly service" {
			found = true
			if th.Type != "phrase" || th.Frequency != 2 {
				t.Fatalf("unexpected phrase theme: %+v", th)
			}
			if th.Percentage != 100.0 {
				t.Fatalf("expected 100%% of 2 texts, got %v", th.Percentage)
			}
		}
	}
	if !found {
		t.Fatalf("expected 'friendly service' phrase, got %+v", themes)
	}
}

func TestExtractThemes_SortedAndCapped(t *testing.T) {
	reviews := texts(
		"tacos tacos tacos burrito burrito salsa salsa",
		"tacos burrito salsa nachos nachos",
		"quesadilla quesadilla tortas tortas chips chips guac guac",
	)
	themes := analysis.ExtractThemes(reviews, 4)
	if len(themes) > 4 {
		t.Fatalf("expected at most 4 themes, got %d", len(themes))
	}
	for i := 1; i < len(themes); i++ {
		if themes[i].Frequency > themes[i-1].Frequency {
			t.Fatalf("themes not sorted by frequency: %+v", themes)
		}
	}
	if themes[0].Theme != "tacos" || themes[0].Frequency != 4 {
		t.Fatalf("expected tacos on top, got %+v", themes[0])
	}
}

func TestExtractThemes_EmptyInputs(t *testing.T) {
	if out := analysis.ExtractThemes(nil, 10); len(out) != 0 {
		t.Fatalf("nil input: got %+v", out)
	}
	if out := analysis.ExtractThemes(texts("", "   "), 10); len(out) != 0 {
		t.Fatalf("blank texts: got %+v", out)
	}
}
