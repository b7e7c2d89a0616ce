package analysis

import (
	"github.com/montanaflynn/stats"

	"review_dashboard/internal/domain"
)

// Summarize computes whole-collection statistics. Empty input returns the
// zeroed structure; collections with no rated reviews report 0 for the
// rating averages and those with no dated reviews carry a nil DateRange.
func Summarize(reviews []domain.Review) domain.OverallMetrics {
	if len(reviews) == 0 {
		return domain.OverallMetrics{}
	}

	var ratings []float64
	votes, words := 0, 0
	var earliest, latest *domain.Review
	for i := range reviews {
		r := &reviews[i]
		if r.Rating != nil {
			ratings = append(ratings, *r.Rating)
		}
		votes += r.HelpfulVotes
		words += r.WordCount
		if r.Date != nil {
			if earliest == nil || r.Date.Before(*earliest.Date) {
				earliest = r
			}
			if latest == nil || r.Date.After(*latest.Date) {
				latest = r
			}
		}
	}

	m := domain.OverallMetrics{
		TotalReviews:       len(reviews),
		RatingDistribution: distribution(ratings),
		TotalHelpfulVotes:  votes,
		AverageWordCount:   round1(float64(words) / float64(len(reviews))),
	}
	if len(ratings) > 0 {
		avg, _ := stats.Mean(ratings)
		med, _ := stats.Median(ratings)
		m.AverageRating = round2(avg)
		m.MedianRating = round2(med)
	}
	if earliest != nil {
		m.DateRange = &domain.DateRange{
			Earliest: earliest.Date.Format("2006-01-02"),
			Latest:   latest.Date.Format("2006-01-02"),
		}
	}
	return m
}
