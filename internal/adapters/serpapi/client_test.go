package serpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"review_dashboard/internal/adapters/serpapi"
)

func newClient(t *testing.T, base string) *serpapi.Client {
	t.Helper()
	cl, err := serpapi.New(base, "test-key", "test-place", 100) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	return cl
}

func TestFetchReviews_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(500)
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"reviews": []any{
					map[string]any{"rating": 4.5, "review": "solid"},
				},
				"search_metadata": map[string]any{"total_results": 37.0},
			})
		}
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := newClient(t, ts.URL).FetchReviews(ctx, 0, 10)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(res.Reviews) != 1 || res.Metadata.TotalResults != 37 || res.Metadata.PlaceID != "test-place" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestFetchReviews_Unauthorized(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
	}))
	defer ts.Close()

	_, err := newClient(t, ts.URL).FetchReviews(context.Background(), 0, 10)
	if !errors.Is(err, serpapi.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestFetchReviews_RateLimited(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(429)
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := newClient(t, ts.URL).FetchReviews(ctx, 0, 10)
	if !errors.Is(err, serpapi.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestFetchReviews_EnvelopeValidation(t *testing.T) {
	cases := map[string]any{
		"reviews not a list": map[string]any{"reviews": "nope"},
	}
	for name, payload := range cases {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(payload)
		}))
		_, err := newClient(t, ts.URL).FetchReviews(context.Background(), 0, 10)
		ts.Close()
		if !errors.Is(err, serpapi.ErrMalformed) {
			t.Fatalf("%s: expected ErrMalformed, got %v", name, err)
		}
	}
}

func TestFetchReviews_UpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "Invalid API key"})
	}))
	defer ts.Close()

	_, err := newClient(t, ts.URL).FetchReviews(context.Background(), 0, 10)
	if !errors.Is(err, serpapi.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestFetchReviews_SkipsNonObjectEntries(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"reviews": []any{
				map[string]any{"review": "kept"},
				"dropped",
				42.0,
				map[string]any{"review": "also kept"},
			},
		})
	}))
	defer ts.Close()

	res, err := newClient(t, ts.URL).FetchReviews(context.Background(), 0, 10)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(res.Reviews) != 2 {
		t.Fatalf("expected 2 object reviews, got %+v", res.Reviews)
	}
}

func TestFetchReviews_EmptyPage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"reviews": []any{}})
	}))
	defer ts.Close()

	res, err := newClient(t, ts.URL).FetchReviews(context.Background(), 0, 10)
	if err != nil {
		t.Fatalf("zero-length reviews must not error: %v", err)
	}
	if len(res.Reviews) != 0 {
		t.Fatalf("expected empty page, got %+v", res.Reviews)
	}
}

func TestNew_RequiresCredentials(t *testing.T) {
	if _, err := serpapi.New("http://x", "", "place", 5); err == nil {
		t.Fatal("expected error for empty key")
	}
	if _, err := serpapi.New("http://x", "key", "", 5); err == nil {
		t.Fatal("expected error for empty place ID")
	}
}
