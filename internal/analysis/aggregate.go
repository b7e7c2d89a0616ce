// Package analysis holds the pure review-analytics pipeline: time-bucketed
// rating aggregation, theme extraction, lexicon-based sentiment scoring and
// whole-collection summaries. Every function is stateless and safe for
// concurrent callers.
package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/rs/zerolog/log"

	"review_dashboard/internal/domain"
)

// AggregateRatings groups reviews by time interval and computes per-bucket
// rating statistics. Reviews missing a date or a rating are excluded.
// Buckets are sorted ascending by key; an unsupported interval is an error.
func AggregateRatings(reviews []domain.Review, interval domain.Interval) ([]domain.TimeBucket, error) {
	if !interval.Valid() {
		return nil, domain.ErrInvalidInterval
	}

	groups := make(map[string][]domain.Review)
	for _, r := range reviews {
		if r.Date == nil || r.Rating == nil {
			continue
		}
		k := bucketKey(*r.Date, interval)
		groups[k] = append(groups[k], r)
	}

	out := make([]domain.TimeBucket, 0, len(groups))
	for _, k := range sortedKeys(groups) {
		grp := groups[k]
		ratings := make([]float64, 0, len(grp))
		votes := 0
		for _, r := range grp {
			ratings = append(ratings, *r.Rating)
			votes += r.HelpfulVotes
		}
		avg, _ := stats.Mean(ratings)
		med, _ := stats.Median(ratings)
		out = append(out, domain.TimeBucket{
			Date:               k,
			AverageRating:      round2(avg),
			MedianRating:       round2(med),
			ReviewCount:        len(grp),
			RatingDistribution: distribution(ratings),
			TotalHelpfulVotes:  votes,
		})
	}
	log.Debug().Int("reviews", len(reviews)).Int("buckets", len(out)).
		Str("interval", string(interval)).Msg("aggregated ratings")
	return out, nil
}

// Volume counts reviews per time bucket. Undated reviews are excluded.
func Volume(reviews []domain.Review, interval domain.Interval) ([]domain.VolumePoint, error) {
	if !interval.Valid() {
		return nil, domain.ErrInvalidInterval
	}

	counts := make(map[string]int)
	for _, r := range reviews {
		if r.Date == nil {
			continue
		}
		counts[bucketKey(*r.Date, interval)]++
	}

	out := make([]domain.VolumePoint, 0, len(counts))
	for _, k := range sortedKeys(counts) {
		out = append(out, domain.VolumePoint{Date: k, ReviewCount: counts[k], Interval: interval})
	}
	return out, nil
}

// bucketKey renders the grouping key. All three formats are zero-padded so
// lexical ordering matches chronological ordering.
func bucketKey(d time.Time, interval domain.Interval) string {
	switch interval {
	case domain.IntervalDaily:
		return d.Format("2006-01-02")
	case domain.IntervalWeekly:
		// Monday on or before d, independent of locale.
		back := (int(d.Weekday()) + 6) % 7
		return d.AddDate(0, 0, -back).Format("2006-01-02")
	case domain.IntervalMonthly:
		return d.Format("2006-01")
	}
	return ""
}

// distribution bins ratings: [1,2) [2,3) [3,4) [4,5) and exact 5.0.
func distribution(ratings []float64) domain.RatingDistribution {
	var d domain.RatingDistribution
	for _, r := range ratings {
		switch {
		case r >= 1 && r < 2:
			d.OneStar++
		case r >= 2 && r < 3:
			d.TwoStar++
		case r >= 3 && r < 4:
			d.ThreeStar++
		case r >= 4 && r < 5:
			d.FourStar++
		case r == 5:
			d.FiveStar++
		}
	}
	return d
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
func round2(x float64) float64 { return math.Round(x*100) / 100 }
func round3(x float64) float64 { return math.Round(x*1000) / 1000 }
