package analysis

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"review_dashboard/internal/domain"
)

// Classification thresholds on the net score.
const (
	weakThreshold   = 0.5
	strongThreshold = 2.0
)

// Scorer classifies review text against a fixed lexicon. It is stateless
// beyond the rule table and safe for concurrent use.
type Scorer struct {
	lex Lexicon
}

func NewScorer(lex Lexicon) *Scorer { return &Scorer{lex: lex} }

// Score classifies a single review text. Empty or very short text yields a
// low-confidence neutral result with a reason instead of being scored.
func (s *Scorer) Score(text string) domain.SentimentResult {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return neutralResult("Empty or invalid text")
	}
	if utf8.RuneCountInString(text) < 3 {
		return neutralResult("Text too short for analysis")
	}

	pos := s.scorePass(text, s.lex.Positive, s.lex.PositivePhrases)
	neg := s.scorePass(text, s.lex.Negative, s.lex.NegativePhrases)
	sentiment, confidence := classify(pos, neg)

	return domain.SentimentResult{
		Sentiment:      sentiment,
		Confidence:     confidence,
		PositiveScore:  round3(pos),
		NegativeScore:  round3(neg),
		TextLength:     utf8.RuneCountInString(text),
		AnalysisMethod: "lexicon_based",
	}
}

// scorePass runs one polarity over the text: phrase matches weigh a flat
// 2.0 each; word hits weigh 1.0, multiplied by an immediately preceding
// intensifier and flipped to -0.5x when a negation appears within the three
// preceding tokens.
func (s *Scorer) scorePass(text string, words map[string]struct{}, phrases []*regexp.Regexp) float64 {
	score := 0.0
	for _, p := range phrases {
		score += float64(len(p.FindAllString(text, -1))) * 2.0
	}

	toks := tokenize(text)
	for i, w := range toks {
		if _, hit := words[w]; !hit {
			continue
		}
		ws := 1.0
		if i > 0 {
			if mult, ok := s.lex.Intensifiers[toks[i-1]]; ok {
				ws *= mult
			}
		}
		for j := max(0, i-3); j < i; j++ {
			if _, neg := s.lex.Negations[toks[j]]; neg {
				ws *= -0.5
				break
			}
		}
		score += ws
	}
	return score
}

// classify maps the two pass scores to a label and confidence.
func classify(pos, neg float64) (string, float64) {
	net := pos - neg
	total := pos + neg

	var sentiment string
	var confidence float64
	switch {
	case math.Abs(net) < weakThreshold:
		sentiment = "neutral"
		confidence = 1.0 - (math.Abs(net)/weakThreshold)*0.3
	case net > 0:
		sentiment = "positive"
		if net >= strongThreshold {
			confidence = math.Min(0.9, 0.6+(net/strongThreshold)*0.3)
		} else {
			confidence = 0.5 + (net/strongThreshold)*0.4
		}
	default:
		sentiment = "negative"
		if math.Abs(net) >= strongThreshold {
			confidence = math.Min(0.9, 0.6+(math.Abs(net)/strongThreshold)*0.3)
		} else {
			confidence = 0.5 + (math.Abs(net)/strongThreshold)*0.4
		}
	}

	// Strength of total signal nudges confidence up; silence pulls it down.
	if total > 0 {
		confidence = math.Min(confidence*(1+total/10), 0.95)
	} else {
		confidence = math.Max(confidence*0.7, 0.3)
	}
	return sentiment, round3(confidence)
}

func neutralResult(reason string) domain.SentimentResult {
	return domain.SentimentResult{
		Sentiment:      "neutral",
		Confidence:     0.3,
		AnalysisMethod: "default",
		Reason:         reason,
	}
}

// ScoreBatch scores every review with non-empty text and aggregates the
// distribution. Reviews without analyzable text count toward TotalReviews
// only.
func (s *Scorer) ScoreBatch(reviews []domain.Review) domain.BatchSentiment {
	if len(reviews) == 0 {
		return domain.BatchSentiment{AnalysisSummary: "No reviews to analyze"}
	}

	var counts domain.SentimentCounts
	var confidences []float64
	annotated := make([]domain.ReviewSentiment, 0, len(reviews))

	for _, r := range reviews {
		if r.Text == "" {
			continue
		}
		res := s.Score(r.Text)
		switch res.Sentiment {
		case "positive":
			counts.Positive++
		case "negative":
			counts.Negative++
		default:
			counts.Neutral++
		}
		confidences = append(confidences, res.Confidence)
		annotated = append(annotated, domain.ReviewSentiment{Review: r, SentimentAnalysis: res})
	}

	analyzed := len(annotated)
	if analyzed == 0 {
		return domain.BatchSentiment{
			TotalReviews:    len(reviews),
			AnalysisSummary: fmt.Sprintf("No analyzable text found in %d reviews", len(reviews)),
		}
	}

	pct := func(n int) float64 { return round1(float64(n) / float64(analyzed) * 100) }
	sum, lo, hi := 0.0, confidences[0], confidences[0]
	for _, c := range confidences {
		sum += c
		lo = math.Min(lo, c)
		hi = math.Max(hi, c)
	}

	log.Debug().Int("analyzed", analyzed).
		Int("positive", counts.Positive).Int("negative", counts.Negative).Int("neutral", counts.Neutral).
		Msg("scored sentiment batch")

	return domain.BatchSentiment{
		TotalReviews:          len(reviews),
		AnalyzedReviews:       analyzed,
		SentimentDistribution: counts,
		SentimentPercentages: domain.SentimentPercentages{
			Positive: pct(counts.Positive),
			Negative: pct(counts.Negative),
			Neutral:  pct(counts.Neutral),
		},
		AverageConfidence:    round3(sum / float64(analyzed)),
		ConfidenceRange:      domain.ConfidenceRange{Min: lo, Max: hi},
		ReviewsWithSentiment: annotated,
		AnalysisSummary:      summaryLine(counts, analyzed),
	}
}

// summaryLine names the dominant label; ties fall back to neutral.
func summaryLine(c domain.SentimentCounts, total int) string {
	dominant, n := "neutral", c.Neutral
	switch {
	case c.Positive > c.Negative && c.Positive > c.Neutral:
		dominant, n = "positive", c.Positive
	case c.Negative > c.Positive && c.Negative > c.Neutral:
		dominant, n = "negative", c.Negative
	}
	pct := round1(float64(n) / float64(total) * 100)
	return fmt.Sprintf("Overall sentiment is %s (%.1f%% of reviews)", dominant, pct)
}
