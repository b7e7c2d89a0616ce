// Package serpapi implements the upstream review-search client against the
// SerpAPI OpenTable Reviews endpoint.
package serpapi

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"review_dashboard/internal/adapters/observability"
	"review_dashboard/internal/domain"
)

const engine = "open_table_reviews"

var (
	ErrUnauthorized = errors.New("serpapi: unauthorized")
	ErrRateLimited  = errors.New("serpapi: rate limited")
	ErrTimeout      = errors.New("serpapi: timeout")
	ErrMalformed    = errors.New("serpapi: malformed response")
	ErrUpstream     = errors.New("serpapi: upstream error")
)

type Client struct {
	base    string
	hc      *http.Client
	key     string
	placeID string
	rl      *rate.Limiter
}

func New(base, key, placeID string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if placeID == "" {
		return nil, fmt.Errorf("place ID is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base:    base,
		hc:      &http.Client{Timeout: 30 * time.Second},
		key:     key,
		placeID: placeID,
		rl:      rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// FetchReviews retrieves one page of reviews and validates the envelope.
func (c *Client) FetchReviews(ctx context.Context, start, num int) (domain.FetchResult, error) {
	q := url.Values{}
	q.Set("engine", engine)
	q.Set("api_key", c.key)
	q.Set("place_id", c.placeID)
	q.Set("start", strconv.Itoa(start))
	q.Set("num", strconv.Itoa(num))

	var raw map[string]any
	if err := c.get(ctx, c.base+"?"+q.Encode(), &raw); err != nil {
		return domain.FetchResult{}, err
	}
	return c.validate(raw, start, num)
}

// validate checks the response envelope and normalizes its shape. Individual
// non-object review entries are skipped; a broken envelope is an error.
func (c *Client) validate(raw map[string]any, start, num int) (domain.FetchResult, error) {
	if raw == nil {
		return domain.FetchResult{}, fmt.Errorf("%w: expected JSON object", ErrMalformed)
	}
	if msg, ok := raw["error"].(string); ok {
		return domain.FetchResult{}, fmt.Errorf("%w: %s", ErrUpstream, msg)
	}

	var reviews []domain.RawReview
	switch list := raw["reviews"].(type) {
	case nil:
		reviews = []domain.RawReview{}
	case []any:
		reviews = make([]domain.RawReview, 0, len(list))
		for i, it := range list {
			m, ok := it.(map[string]any)
			if !ok {
				log.Warn().Int("index", i).Msg("skipping non-object review entry")
				continue
			}
			reviews = append(reviews, m)
		}
	default:
		return domain.FetchResult{}, fmt.Errorf("%w: reviews field must be a list", ErrMalformed)
	}

	total := len(reviews)
	if sm, ok := raw["search_metadata"].(map[string]any); ok {
		if t, ok := sm["total_results"].(float64); ok {
			total = int(t)
		}
	}
	params, _ := raw["search_parameters"].(map[string]any)
	placeInfo, _ := raw["place_info"].(map[string]any)
	pagination, _ := raw["serpapi_pagination"].(map[string]any)

	return domain.FetchResult{
		Reviews: reviews,
		Metadata: domain.FetchMetadata{
			TotalResults:     total,
			PlaceID:          c.placeID,
			FetchedAt:        time.Now().UTC(),
			SearchParameters: params,
		},
		PlaceInfo:  placeInfo,
		Pagination: pagination,
	}, nil
}

// get performs a GET with client-side rate limiting, retries, and JSON
// decode into out. Retries on 429 and transient 5xx, honoring Retry-After.
func (c *Client) get(ctx context.Context, u string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "review-dashboard/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
			}
			var ue *url.Error
			if errors.As(err, &ue) && ue.Timeout() {
				lastErr = fmt.Errorf("%w: %v", ErrTimeout, err)
			} else {
				lastErr = err
			}
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			return lastErr
		}
		observability.ObserveExternal("serpapi", engine, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			return nil

		case http.StatusUnauthorized, http.StatusForbidden:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusTooManyRequests:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = ErrRateLimited
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			return lastErr

		case http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("%w: remote %d", ErrUpstream, resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
