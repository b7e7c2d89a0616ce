package domain

// RatingDistribution counts ratings into star bins. Bins 1..4 are half-open
// ([1,2), [2,3), ...); the 5-star bin holds exact 5.0 only.
type RatingDistribution struct {
	OneStar   int `json:"1_star"`
	TwoStar   int `json:"2_star"`
	ThreeStar int `json:"3_star"`
	FourStar  int `json:"4_star"`
	FiveStar  int `json:"5_star"`
}

// Total is the number of rated reviews the distribution covers.
func (d RatingDistribution) Total() int {
	return d.OneStar + d.TwoStar + d.ThreeStar + d.FourStar + d.FiveStar
}

// TimeBucket is one aggregated time period of rating statistics.
// Date is the bucket key: ISO date for daily, the Monday's ISO date for
// weekly, YYYY-MM for monthly.
type TimeBucket struct {
	Date               string             `json:"date"`
	AverageRating      float64            `json:"average_rating"`
	MedianRating       float64            `json:"median_rating"`
	ReviewCount        int                `json:"review_count"`
	RatingDistribution RatingDistribution `json:"rating_distribution"`
	TotalHelpfulVotes  int                `json:"total_helpful_votes"`
}

// VolumePoint is the review count for one time period.
type VolumePoint struct {
	Date        string   `json:"date"`
	ReviewCount int      `json:"review_count"`
	Interval    Interval `json:"interval"`
}

// Theme is a recurring keyword or phrase across a review collection.
type Theme struct {
	Theme      string  `json:"theme"`
	Type       string  `json:"type"` // keyword|phrase
	Frequency  int     `json:"frequency"`
	Percentage float64 `json:"percentage"`
}

// SentimentResult classifies one review text.
type SentimentResult struct {
	Sentiment      string  `json:"sentiment"` // positive|negative|neutral
	Confidence     float64 `json:"confidence"`
	PositiveScore  float64 `json:"positive_score"`
	NegativeScore  float64 `json:"negative_score"`
	TextLength     int     `json:"text_length"`
	AnalysisMethod string  `json:"analysis_method"`
	Reason         string  `json:"reason,omitempty"`
}

// SentimentCounts is the per-label distribution over a batch.
type SentimentCounts struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// SentimentPercentages mirrors SentimentCounts as percentages of the
// analyzed reviews; the three values sum to 100 within rounding.
type SentimentPercentages struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// ConfidenceRange holds the min/max confidence seen across a batch.
type ConfidenceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ReviewSentiment pairs a canonical review with its sentiment result.
type ReviewSentiment struct {
	Review
	SentimentAnalysis SentimentResult `json:"sentiment_analysis"`
}

// BatchSentiment aggregates per-review sentiment over a collection.
// Reviews without analyzable text count toward TotalReviews only.
type BatchSentiment struct {
	TotalReviews          int                  `json:"total_reviews"`
	AnalyzedReviews       int                  `json:"analyzed_reviews"`
	SentimentDistribution SentimentCounts      `json:"sentiment_distribution"`
	SentimentPercentages  SentimentPercentages `json:"sentiment_percentages"`
	AverageConfidence     float64              `json:"average_confidence"`
	ConfidenceRange       ConfidenceRange      `json:"confidence_range"`
	ReviewsWithSentiment  []ReviewSentiment    `json:"reviews_with_sentiment,omitempty"`
	AnalysisSummary       string               `json:"analysis_summary"`
}

// DateRange spans the earliest and latest review dates, ISO formatted.
type DateRange struct {
	Earliest string `json:"earliest"`
	Latest   string `json:"latest"`
}

// OverallMetrics are whole-collection statistics.
type OverallMetrics struct {
	TotalReviews       int                `json:"total_reviews"`
	AverageRating      float64            `json:"average_rating"`
	MedianRating       float64            `json:"median_rating"`
	RatingDistribution RatingDistribution `json:"rating_distribution"`
	TotalHelpfulVotes  int                `json:"total_helpful_votes"`
	AverageWordCount   float64            `json:"average_word_count"`
	DateRange          *DateRange         `json:"date_range"`
}
