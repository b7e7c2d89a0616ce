package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"review_dashboard/internal/analysis"
	"review_dashboard/internal/app"
	"review_dashboard/internal/domain"
)

type fakeSource struct {
	calls   int
	reviews []domain.RawReview
	err     error
}

func (f *fakeSource) FetchReviews(ctx context.Context, start, num int) (domain.FetchResult, error) {
	f.calls++
	if f.err != nil {
		return domain.FetchResult{}, f.err
	}
	return domain.FetchResult{
		Reviews: f.reviews,
		Metadata: domain.FetchMetadata{
			TotalResults: len(f.reviews),
			PlaceID:      "test-place",
			FetchedAt:    time.Now().UTC(),
		},
	}, nil
}

type fakeCache struct {
	data map[string][]byte
	sets int
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (f *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := f.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (f *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.data[key] = b
	f.sets++
	return nil
}

func (f *fakeCache) Del(ctx context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func sampleRaw() []domain.RawReview {
	return []domain.RawReview{
		{"rating": 5.0, "review": "The tacos were amazing and the service was excellent", "date": "2023-01-05"},
		{"rating": 4.0, "review": "Really good tacos, friendly staff", "date": "2023-01-20"},
		{"rating": 2.0, "review": "Terrible wait and the food was cold", "date": "2023-02-10"},
	}
}

func TestReviewService_CachesSecondFetch(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{reviews: sampleRaw()}
	cache := newFakeCache()
	svc := app.NewReviewService(src, cache, "test-place", time.Minute)

	first, err := svc.Fetch(ctx, 0, 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if src.calls != 1 || cache.sets != 1 {
		t.Fatalf("expected one upstream call and one cache set, got %d/%d", src.calls, cache.sets)
	}

	// mutate the source; a cached read must not see it
	src.reviews = nil
	second, err := svc.Fetch(ctx, 0, 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("expected cache hit, source called %d times", src.calls)
	}
	if len(second.Reviews) != len(first.Reviews) {
		t.Fatalf("cached result diverged: %d vs %d", len(second.Reviews), len(first.Reviews))
	}
}

func TestReviewService_NilCache(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{reviews: sampleRaw()}
	svc := app.NewReviewService(src, nil, "test-place", time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := svc.Fetch(ctx, 0, 10); err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
	}
	if src.calls != 2 {
		t.Fatalf("expected source hit each time without cache, got %d", src.calls)
	}
}

func TestReviewService_DistinctPagesDistinctKeys(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{reviews: sampleRaw()}
	cache := newFakeCache()
	svc := app.NewReviewService(src, cache, "test-place", time.Minute)

	if _, err := svc.Fetch(ctx, 0, 10); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, err := svc.Fetch(ctx, 10, 10); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if src.calls != 2 || len(cache.data) != 2 {
		t.Fatalf("expected two upstream calls and two cache entries, got %d/%d", src.calls, len(cache.data))
	}
}

func TestMetricsService_AllSections(t *testing.T) {
	ctx := context.Background()
	rs := app.NewReviewService(&fakeSource{reviews: sampleRaw()}, nil, "test-place", time.Minute)
	svc := app.NewMetricsService(rs, analysis.NewScorer(analysis.DefaultLexicon()))

	out, meta, err := svc.Metrics(ctx, 0, 10, domain.IntervalMonthly)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if meta.PlaceID != "test-place" {
		t.Fatalf("metadata not propagated: %+v", meta)
	}
	if out.TotalProcessed != 3 || out.Interval != domain.IntervalMonthly {
		t.Fatalf("unexpected envelope: %+v", out)
	}
	if out.OverallMetrics.TotalReviews != 3 {
		t.Fatalf("summary missing: %+v", out.OverallMetrics)
	}
	if len(out.RatingTrends) != 2 {
		t.Fatalf("expected 2 monthly buckets, got %+v", out.RatingTrends)
	}
	if len(out.VolumeData) != 2 {
		t.Fatalf("expected 2 volume points, got %+v", out.VolumeData)
	}
	if len(out.Themes) == 0 {
		t.Fatalf("expected at least one theme (tacos appears twice)")
	}
}

func TestMetricsService_InvalidInterval(t *testing.T) {
	src := &fakeSource{reviews: sampleRaw()}
	rs := app.NewReviewService(src, nil, "test-place", time.Minute)
	svc := app.NewMetricsService(rs, analysis.NewScorer(analysis.DefaultLexicon()))

	_, _, err := svc.Metrics(context.Background(), 0, 10, domain.Interval("hourly"))
	if !errors.Is(err, domain.ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
	if src.calls != 0 {
		t.Fatal("must not hit upstream for an invalid interval")
	}
}

func TestMetricsService_Sentiment(t *testing.T) {
	rs := app.NewReviewService(&fakeSource{reviews: sampleRaw()}, nil, "test-place", time.Minute)
	svc := app.NewMetricsService(rs, analysis.NewScorer(analysis.DefaultLexicon()))

	out, _, err := svc.Sentiment(context.Background(), 0, 10)
	if err != nil {
		t.Fatalf("sentiment: %v", err)
	}
	if out.TotalReviews != 3 || out.AnalyzedReviews != 3 {
		t.Fatalf("unexpected counts: %+v", out)
	}
	if out.SentimentDistribution.Positive < 2 {
		t.Fatalf("expected two positive reviews, got %+v", out.SentimentDistribution)
	}
	if out.SentimentDistribution.Negative != 1 {
		t.Fatalf("expected one negative review, got %+v", out.SentimentDistribution)
	}
}

func TestMetricsService_UpstreamError(t *testing.T) {
	wantErr := errors.New("boom")
	rs := app.NewReviewService(&fakeSource{err: wantErr}, nil, "test-place", time.Minute)
	svc := app.NewMetricsService(rs, analysis.NewScorer(analysis.DefaultLexicon()))

	if _, _, err := svc.Metrics(context.Background(), 0, 10, domain.IntervalDaily); !errors.Is(err, wantErr) {
		t.Fatalf("expected upstream error passthrough, got %v", err)
	}
}
