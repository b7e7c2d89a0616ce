package analysis

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"review_dashboard/internal/domain"
)

var wordRE = regexp.MustCompile(`[a-zA-Z]+`)

// tokenize splits text into lower-cased alphabetic words.
func tokenize(text string) []string {
	return wordRE.FindAllString(strings.ToLower(text), -1)
}

// Filler words excluded from keyword themes.
var stopwords = wordSet(
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
	"of", "with", "by", "is", "was", "are", "were", "be", "been", "have",
	"has", "had", "do", "does", "did", "will", "would", "could", "should",
	"may", "might", "must", "can", "this", "that", "these", "those", "i",
	"you", "he", "she", "it", "we", "they", "me", "him", "her", "us", "them",
)

// Sentiment-adjective + noun combinations worth surfacing as phrases.
var phrasePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:great|good|excellent|amazing|wonderful|fantastic|delicious|tasty)\s+\w+\b`),
	regexp.MustCompile(`\b(?:bad|terrible|awful|horrible|disgusting|poor)\s+\w+\b`),
	regexp.MustCompile(`\b(?:friendly|rude|helpful|slow|fast|quick)\s+(?:service|staff|server|waiter|waitress)\b`),
	regexp.MustCompile(`\b(?:fresh|stale|hot|cold|warm|spicy|bland)\s+(?:food|meal|dish)\b`),
}

func wordSet(words ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// counter tallies strings while remembering first-seen order, so ranking
// ties resolve by original enumeration order.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter { return &counter{counts: make(map[string]int)} }

func (c *counter) add(s string) {
	if _, seen := c.counts[s]; !seen {
		c.order = append(c.order, s)
	}
	c.counts[s]++
}

// top returns up to n entries sorted by count descending, stable on ties.
func (c *counter) top(n int) []string {
	ranked := make([]string, len(c.order))
	copy(ranked, c.order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return c.counts[ranked[i]] > c.counts[ranked[j]]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// ExtractThemes mines recurring keywords and phrases from review text.
// Only terms occurring at least twice qualify; each pass contributes up to
// maxThemes/2 entries and the merged list is capped at maxThemes, sorted by
// frequency. Percentage is relative to the number of non-empty texts.
func ExtractThemes(reviews []domain.Review, maxThemes int) []domain.Theme {
	texts := make([]string, 0, len(reviews))
	for _, r := range reviews {
		if strings.TrimSpace(r.Text) != "" {
			texts = append(texts, strings.ToLower(r.Text))
		}
	}
	if len(texts) == 0 {
		return []domain.Theme{}
	}

	words := newCounter()
	phrases := newCounter()
	for _, text := range texts {
		for _, w := range tokenize(text) {
			if len(w) <= 2 {
				continue
			}
			if _, stop := stopwords[w]; stop {
				continue
			}
			words.add(w)
		}
		for _, p := range phrasePatterns {
			for _, m := range p.FindAllString(text, -1) {
				if len(m) > 3 {
					phrases.add(m)
				}
			}
		}
	}

	themes := make([]domain.Theme, 0, maxThemes)
	appendThemes := func(c *counter, kind string) {
		for _, term := range c.top(maxThemes / 2) {
			n := c.counts[term]
			if n < 2 {
				continue
			}
			themes = append(themes, domain.Theme{
				Theme:      term,
				Type:       kind,
				Frequency:  n,
				Percentage: round1(float64(n) / float64(len(texts)) * 100),
			})
		}
	}
	appendThemes(words, "keyword")
	appendThemes(phrases, "phrase")

	sort.SliceStable(themes, func(i, j int) bool { return themes[i].Frequency > themes[j].Frequency })
	if len(themes) > maxThemes {
		themes = themes[:maxThemes]
	}

	log.Debug().Int("themes", len(themes)).Int("texts", len(texts)).Msg("extracted themes")
	return themes
}
