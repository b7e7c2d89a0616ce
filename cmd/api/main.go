package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	server "review_dashboard/internal/adapters/http_server"
	"review_dashboard/internal/adapters/observability"
	redisad "review_dashboard/internal/adapters/redis"
	"review_dashboard/internal/adapters/serpapi"
	"review_dashboard/internal/analysis"
	"review_dashboard/internal/app"
	"review_dashboard/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	client, err := serpapi.New(cfg.SerpBase, cfg.SerpKey, cfg.PlaceID, cfg.SerpRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize SerpAPI client")
	}

	// cache is best-effort: run without it when redis is unreachable
	var cache *redisad.Cache
	c := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := c.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, caching disabled")
	} else {
		cache = c
	}
	cancel()

	reviews := newReviewService(client, cache, cfg)
	metrics := app.NewMetricsService(reviews, analysis.NewScorer(analysis.DefaultLexicon()))

	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{R: reviews, M: metrics})

	log.Info().Str("addr", cfg.HTTPAddr).Str("place_id", cfg.PlaceID).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

func newReviewService(client *serpapi.Client, cache *redisad.Cache, cfg shared.Config) *app.ReviewService {
	if cache == nil {
		return app.NewReviewService(client, nil, cfg.PlaceID, cfg.CacheTTL)
	}
	return app.NewReviewService(client, cache, cfg.PlaceID, cfg.CacheTTL)
}
