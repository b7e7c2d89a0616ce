package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"review_dashboard/internal/adapters/serpapi"
	"review_dashboard/internal/app"
	"review_dashboard/internal/domain"
)

type Handlers struct {
	R *app.ReviewService
	M *app.MetricsService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/reviews", h.getReviews)
	s.mux.Get("/v1/metrics", h.getMetrics)
	s.mux.Get("/v1/sentiment", h.getSentiment)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeUpstreamProblem maps the client sentinels to response statuses.
func writeUpstreamProblem(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, serpapi.ErrUnauthorized):
		writeProblem(w, http.StatusBadGateway, "Upstream Authentication Failed",
			"review service credentials were rejected")
	case errors.Is(err, serpapi.ErrRateLimited):
		w.Header().Set("Retry-After", "300")
		writeProblem(w, http.StatusTooManyRequests, "Rate Limit Exceeded",
			"too many requests to the review service, try again later")
	case errors.Is(err, serpapi.ErrTimeout):
		writeProblem(w, http.StatusGatewayTimeout, "Upstream Timeout",
			"the review service took too long to respond")
	case errors.Is(err, serpapi.ErrMalformed):
		writeProblem(w, http.StatusBadGateway, "Invalid Upstream Response",
			"the review service returned an unreadable response")
	default:
		writeProblem(w, http.StatusServiceUnavailable, "Upstream Unavailable",
			"unable to fetch reviews at this time")
	}
}

// pageParams validates start/num query parameters: start >= 0, 1 <= num <= 1000.
func pageParams(r *http.Request) (start, num int, ok bool, title, detail string) {
	start, num = 0, 100
	if s := r.URL.Query().Get("start"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return 0, 0, false, "Invalid start parameter", "start must be a non-negative integer"
		}
		start = v
	}
	if s := r.URL.Query().Get("num"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 || v > 1000 {
			return 0, 0, false, "Invalid num parameter", "num must be an integer between 1 and 1000"
		}
		num = v
	}
	return start, num, true, "", ""
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

type reviewsResponse struct {
	Data       domain.FetchResult `json:"data"`
	Pagination pagination         `json:"pagination"`
}

type pagination struct {
	Start     int `json:"start"`
	Requested int `json:"requested"`
	Returned  int `json:"returned"`
}

func (h *Handlers) getReviews(w http.ResponseWriter, r *http.Request) {
	start, num, ok, title, detail := pageParams(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, title, detail)
		return
	}
	res, err := h.R.Fetch(r.Context(), start, num)
	if err != nil {
		writeUpstreamProblem(w, err)
		return
	}
	writeCached(w, r, reviewsResponse{
		Data:       res,
		Pagination: pagination{Start: start, Requested: num, Returned: len(res.Reviews)},
	})
}

type metricsResponse struct {
	Data     app.DashboardMetrics `json:"data"`
	Metadata domain.FetchMetadata `json:"metadata"`
}

func (h *Handlers) getMetrics(w http.ResponseWriter, r *http.Request) {
	start, num, ok, title, detail := pageParams(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, title, detail)
		return
	}
	interval := domain.Interval(r.URL.Query().Get("interval"))
	if interval == "" {
		interval = domain.IntervalMonthly
	}
	data, meta, err := h.M.Metrics(r.Context(), start, num, interval)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInterval) {
			writeProblem(w, http.StatusBadRequest, "Invalid interval parameter",
				"interval must be 'daily', 'weekly', or 'monthly'")
			return
		}
		writeUpstreamProblem(w, err)
		return
	}
	writeCached(w, r, metricsResponse{Data: data, Metadata: meta})
}

type sentimentResponse struct {
	Data     domain.BatchSentiment `json:"data"`
	Metadata domain.FetchMetadata  `json:"metadata"`
}

func (h *Handlers) getSentiment(w http.ResponseWriter, r *http.Request) {
	start, num, ok, title, detail := pageParams(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, title, detail)
		return
	}
	data, meta, err := h.M.Sentiment(r.Context(), start, num)
	if err != nil {
		writeUpstreamProblem(w, err)
		return
	}
	writeCached(w, r, sentimentResponse{Data: data, Metadata: meta})
}
