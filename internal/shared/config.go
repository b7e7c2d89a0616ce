package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	SerpBase    string
	SerpKey     string
	PlaceID     string
	SerpRPS     int
	Workers     int
	ReviewCount int
	Pages       int
	CacheTTL    time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		SerpBase:    env("SERPAPI_BASE_URL", "https://serpapi.com/search.json"),
		SerpKey:     env("SERPAPI_KEY", ""),
		PlaceID:     env("PLACE_ID", ""),
		SerpRPS:     atoi("SERPAPI_RPS", 5),
		Workers:     atoi("FETCH_WORKERS", 8),
		ReviewCount: atoi("REVIEW_COUNT", 100),
		Pages:       atoi("FETCH_PAGES", 5),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
	}
	if c.SerpKey == "" {
		log.Warn().Msg("SERPAPI_KEY is empty")
	}
	if c.PlaceID == "" {
		log.Warn().Msg("PLACE_ID is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
