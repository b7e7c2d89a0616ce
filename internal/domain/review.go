package domain

import "time"

// RawReview is a single review as returned by the upstream search API.
// Field names and value types vary between responses; the normalizer in
// internal/app owns the mapping to Review.
type RawReview = map[string]any

// Review is the canonical, normalized review record. Immutable after
// normalization.
type Review struct {
	ID           string     `json:"review_id"`
	Rating       *float64   `json:"rating"` // nil when absent upstream
	Text         string     `json:"review_text"`
	Date         *time.Time `json:"date"` // date-only, nil when unparseable
	DateString   string     `json:"date_string,omitempty"`
	ReviewerName string     `json:"reviewer_name"`
	HelpfulVotes int        `json:"helpful_votes"`
	WordCount    int        `json:"word_count"`
	CharCount    int        `json:"character_count"`
}

// Interval selects the bucket size for time aggregations.
type Interval string

const (
	IntervalDaily   Interval = "daily"
	IntervalWeekly  Interval = "weekly"
	IntervalMonthly Interval = "monthly"
)

// Valid reports whether i is one of the supported intervals.
func (i Interval) Valid() bool {
	switch i {
	case IntervalDaily, IntervalWeekly, IntervalMonthly:
		return true
	}
	return false
}
