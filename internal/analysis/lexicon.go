package analysis

import "regexp"

// Lexicon is the rule table driving sentiment scoring. Scorers take it at
// construction so alternate tables can be swapped in for other domains or
// for tests.
type Lexicon struct {
	Positive     map[string]struct{}
	Negative     map[string]struct{}
	Intensifiers map[string]float64
	Negations    map[string]struct{}

	PositivePhrases []*regexp.Regexp
	NegativePhrases []*regexp.Regexp
}

// DefaultLexicon returns the restaurant-review rule table.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Positive: wordSet(
			"excellent", "amazing", "fantastic", "wonderful", "great", "good", "delicious",
			"tasty", "fresh", "hot", "perfect", "outstanding", "superb", "brilliant",
			"lovely", "beautiful", "friendly", "helpful", "quick", "fast", "efficient",
			"clean", "cozy", "comfortable", "relaxing", "enjoyable", "pleasant",
			"recommend", "love", "loved", "favorite", "best", "top", "quality",
			"value", "worth", "satisfied", "happy", "pleased", "impressed",
		),
		Negative: wordSet(
			"terrible", "awful", "horrible", "disgusting", "bad", "poor", "worst",
			"hate", "hated", "disappointing", "disappointed", "bland", "tasteless",
			"cold", "stale", "overpriced", "expensive", "slow", "rude", "unfriendly",
			"dirty", "messy", "noisy", "crowded", "uncomfortable", "unpleasant",
			"avoid", "never", "waste", "money", "time", "regret", "sorry",
			"complain", "complaint", "problem", "issue", "wrong", "mistake",
		),
		Intensifiers: map[string]float64{
			"very": 1.5, "extremely": 2.0, "incredibly": 2.0, "absolutely": 1.8,
			"really": 1.3, "quite": 1.2, "pretty": 1.1, "somewhat": 0.8,
			"rather": 0.9, "fairly": 0.9, "totally": 1.7, "completely": 1.8,
		},
		Negations: wordSet(
			"not", "no", "never", "nothing", "nobody", "nowhere", "neither",
			"nor", "none", "hardly", "scarcely", "barely", "seldom", "rarely",
		),
		PositivePhrases: []*regexp.Regexp{
			regexp.MustCompile(`\b(?:highly recommend|would recommend|will return|come back|worth it)\b`),
			regexp.MustCompile(`\bgreat (?:food|service|experience|place|restaurant)\b`),
			regexp.MustCompile(`\bexcellent (?:food|service|experience|meal|dish)\b`),
			regexp.MustCompile(`\bamazing (?:food|service|experience|meal|taste)\b`),
			regexp.MustCompile(`\b(?:love this place|favorite restaurant|best (?:food|service|meal))\b`),
		},
		NegativePhrases: []*regexp.Regexp{
			regexp.MustCompile(`\b(?:would not recommend|will not return|never again|avoid this place)\b`),
			regexp.MustCompile(`\bterrible (?:food|service|experience|meal)\b`),
			regexp.MustCompile(`\bawful (?:food|service|experience|meal)\b`),
			regexp.MustCompile(`\bworst (?:food|service|experience|meal|restaurant)\b`),
			regexp.MustCompile(`\b(?:waste of (?:money|time)|not worth it|overpriced)\b`),
		},
	}
}
