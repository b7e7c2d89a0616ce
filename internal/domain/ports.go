package domain

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidInterval is returned by the aggregators when the requested
// interval is not daily, weekly or monthly.
var ErrInvalidInterval = errors.New("invalid aggregation interval")

// FetchMetadata is upstream response metadata passed through untouched.
type FetchMetadata struct {
	TotalResults     int            `json:"total_results"`
	PlaceID          string         `json:"place_id"`
	FetchedAt        time.Time      `json:"fetched_at"`
	SearchParameters map[string]any `json:"search_parameters,omitempty"`
}

// FetchResult is one validated page of upstream reviews.
type FetchResult struct {
	Reviews    []RawReview    `json:"reviews"`
	Metadata   FetchMetadata  `json:"metadata"`
	PlaceInfo  map[string]any `json:"place_info,omitempty"`
	Pagination map[string]any `json:"pagination,omitempty"`
}

// ReviewSource fetches raw review pages from the upstream search API.
// Implementations own authentication, retries and rate limiting; a
// zero-length Reviews slice is a valid result.
type ReviewSource interface {
	FetchReviews(ctx context.Context, start, num int) (FetchResult, error)
}

// Cache is a TTL key/value store for fetched review envelopes.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
