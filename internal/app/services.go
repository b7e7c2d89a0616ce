package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"review_dashboard/internal/analysis"
	"review_dashboard/internal/domain"
)

const defaultMaxThemes = 10

// ReviewService fetches upstream review pages, serving repeats from cache.
// A nil cache disables caching; cache failures fall through to the source.
type ReviewService struct {
	source   domain.ReviewSource
	cache    domain.Cache
	placeID  string
	cacheTTL time.Duration
}

func NewReviewService(src domain.ReviewSource, c domain.Cache, placeID string, ttl time.Duration) *ReviewService {
	return &ReviewService{source: src, cache: c, placeID: placeID, cacheTTL: ttl}
}

func (s *ReviewService) Fetch(ctx context.Context, start, num int) (domain.FetchResult, error) {
	key := fmt.Sprintf("reviews:%s:%d:%d", s.placeID, start, num)
	var out domain.FetchResult
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &out); ok {
			return out, nil
		}
	}

	res, err := s.source.FetchReviews(ctx, start, num)
	if err != nil {
		return domain.FetchResult{}, err
	}

	if s.cache != nil {
		// size guard: skip pathologically large envelopes
		if b, _ := json.Marshal(res); len(b) < 1_000_000 {
			_ = s.cache.Set(ctx, key, res, int(s.cacheTTL.Seconds()))
		}
	}
	return res, nil
}

// DashboardMetrics is the merged response payload for the metrics endpoint.
type DashboardMetrics struct {
	OverallMetrics domain.OverallMetrics `json:"overall_metrics"`
	RatingTrends   []domain.TimeBucket   `json:"rating_trends"`
	VolumeData     []domain.VolumePoint  `json:"volume_data"`
	Themes         []domain.Theme        `json:"themes"`
	Interval       domain.Interval       `json:"interval"`
	TotalProcessed int                   `json:"total_processed"`
}

// MetricsService runs the analysis pipeline over fetched reviews.
type MetricsService struct {
	reviews *ReviewService
	scorer  *analysis.Scorer
}

func NewMetricsService(rs *ReviewService, scorer *analysis.Scorer) *MetricsService {
	return &MetricsService{reviews: rs, scorer: scorer}
}

// Metrics normalizes one fetched page and computes the four dashboard
// aggregates. The passes are independent and pure, so they run in parallel.
func (s *MetricsService) Metrics(ctx context.Context, start, num int, interval domain.Interval) (DashboardMetrics, domain.FetchMetadata, error) {
	if !interval.Valid() {
		return DashboardMetrics{}, domain.FetchMetadata{}, domain.ErrInvalidInterval
	}

	res, err := s.reviews.Fetch(ctx, start, num)
	if err != nil {
		return DashboardMetrics{}, domain.FetchMetadata{}, err
	}
	normalized := Normalize(res.Reviews)

	out := DashboardMetrics{Interval: interval, TotalProcessed: len(normalized)}
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.OverallMetrics = analysis.Summarize(normalized)
		return nil
	})
	g.Go(func() error {
		var err error
		out.RatingTrends, err = analysis.AggregateRatings(normalized, interval)
		return err
	})
	g.Go(func() error {
		var err error
		out.VolumeData, err = analysis.Volume(normalized, interval)
		return err
	})
	g.Go(func() error {
		out.Themes = analysis.ExtractThemes(normalized, defaultMaxThemes)
		return nil
	})
	if err := g.Wait(); err != nil {
		return DashboardMetrics{}, domain.FetchMetadata{}, err
	}
	return out, res.Metadata, nil
}

// Sentiment scores one fetched page as a batch.
func (s *MetricsService) Sentiment(ctx context.Context, start, num int) (domain.BatchSentiment, domain.FetchMetadata, error) {
	res, err := s.reviews.Fetch(ctx, start, num)
	if err != nil {
		return domain.BatchSentiment{}, domain.FetchMetadata{}, err
	}
	return s.scorer.ScoreBatch(Normalize(res.Reviews)), res.Metadata, nil
}
