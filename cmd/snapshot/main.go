// Command snapshot fetches a number of review pages concurrently, runs the
// full analysis pipeline once, and prints the result as one JSON document.
package main

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"review_dashboard/internal/adapters/observability"
	"review_dashboard/internal/adapters/serpapi"
	"review_dashboard/internal/analysis"
	"review_dashboard/internal/app"
	"review_dashboard/internal/domain"
	"review_dashboard/internal/shared"
)

type snapshot struct {
	OverallMetrics domain.OverallMetrics `json:"overall_metrics"`
	RatingTrends   []domain.TimeBucket   `json:"rating_trends"`
	VolumeData     []domain.VolumePoint  `json:"volume_data"`
	Themes         []domain.Theme        `json:"themes"`
	Sentiment      domain.BatchSentiment `json:"sentiment"`
	Interval       domain.Interval       `json:"interval"`
	PagesFetched   int                   `json:"pages_fetched"`
	TotalReviews   int                   `json:"total_reviews"`
}

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	interval := domain.Interval(os.Getenv("SNAPSHOT_INTERVAL"))
	if interval == "" {
		interval = domain.IntervalMonthly
	}
	if !interval.Valid() {
		log.Fatal().Str("interval", string(interval)).Msg("invalid SNAPSHOT_INTERVAL")
	}

	log.Info().
		Str("place_id", cfg.PlaceID).
		Int("pages", cfg.Pages).
		Int("workers", cfg.Workers).
		Int("per_page", cfg.ReviewCount).
		Msg("snapshot starting")

	client, err := serpapi.New(cfg.SerpBase, cfg.SerpKey, cfg.PlaceID, cfg.SerpRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize SerpAPI client")
	}

	// fetch pages concurrently, bounded by the worker count; pages keep
	// their index so the merged order is deterministic
	pages := make([][]domain.RawReview, cfg.Pages)
	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for i := 0; i < cfg.Pages; i++ {
		i := i

		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(page int) {
			defer wg.Done()
			defer sem.Release(1)

			start := page * cfg.ReviewCount
			res, err := client.FetchReviews(ctx, start, cfg.ReviewCount)
			if err != nil {
				log.Warn().Int("page", page).Err(err).Msg("page fetch failed")
				return
			}
			pages[page] = res.Reviews
			log.Info().Int("page", page).Int("reviews", len(res.Reviews)).Msg("page fetched")
		}(i)
	}
	wg.Wait()

	var raw []domain.RawReview
	fetched := 0
	for _, p := range pages {
		if p != nil {
			fetched++
		}
		raw = append(raw, p...)
	}

	reviews := app.Normalize(raw)
	scorer := analysis.NewScorer(analysis.DefaultLexicon())

	trends, _ := analysis.AggregateRatings(reviews, interval)
	volume, _ := analysis.Volume(reviews, interval)
	out := snapshot{
		OverallMetrics: analysis.Summarize(reviews),
		RatingTrends:   trends,
		VolumeData:     volume,
		Themes:         analysis.ExtractThemes(reviews, 10),
		Sentiment:      scorer.ScoreBatch(reviews),
		Interval:       interval,
		PagesFetched:   fetched,
		TotalReviews:   len(reviews),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal().Err(err).Msg("encode snapshot failed")
	}
	log.Info().Int("reviews", len(reviews)).Msg("snapshot completed")
}
