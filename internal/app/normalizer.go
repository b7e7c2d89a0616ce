package app

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"review_dashboard/internal/domain"
)

/********** alias registry (single source of truth) **********/

var reviewAliases = map[string][]string{
	"id":       {"review_id", "id"},
	"text":     {"review_text", "review", "text"},
	"date":     {"date", "review_date"},
	"reviewer": {"reviewer_name", "author"},
	"votes":    {"helpful_votes", "helpful"},
}

// Ordered candidate layouts for upstream date strings. First match wins.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z",
	"01/02/2006",
	"02/01/2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

/********** tiny helpers **********/

func lookup(m domain.RawReview, key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m[key]
	return v, ok
}

// firstStringAlias returns the first non-empty string for a named alias set,
// coercing non-string values through fmt.Sprint.
func firstStringAlias(m domain.RawReview, key string) string {
	for _, k := range reviewAliases[key] {
		v, ok := lookup(m, k)
		if !ok || v == nil {
			continue
		}
		var s string
		switch t := v.(type) {
		case string:
			s = t
		default:
			s = fmt.Sprint(t)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// floatFlexible coerces float64/int/string shapes (incl. "4,5") to a float.
func floatFlexible(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f, true
		}
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", "."))
		if s == "" {
			return 0, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// safeInt converts to int with fallback to def on any failure.
func safeInt(v any, def int) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
	}
	return def
}

/********** normalizer **********/

// Normalize converts raw upstream reviews to canonical records. Each record
// is transformed independently: a review whose rating is present but
// malformed or outside [1,5] is dropped; all other field failures degrade to
// the field's zero value. Output preserves input order.
func Normalize(raw []domain.RawReview) []domain.Review {
	out := make([]domain.Review, 0, len(raw))
	for _, r := range raw {
		rv, err := normalizeOne(r)
		if err != nil {
			log.Warn().Err(err).Msg("skipping review")
			continue
		}
		out = append(out, rv)
	}
	log.Debug().Int("in", len(raw)).Int("out", len(out)).Msg("normalized reviews")
	return out
}

func normalizeOne(r domain.RawReview) (domain.Review, error) {
	rating, err := ratingOf(r)
	if err != nil {
		return domain.Review{}, err
	}

	text := firstStringAlias(r, "text")

	dateStr := firstStringAlias(r, "date")
	date := parseDate(dateStr)

	name := firstStringAlias(r, "reviewer")
	if name == "" {
		name = "Anonymous"
	}

	votes := 0
	for _, k := range reviewAliases["votes"] {
		if v, ok := lookup(r, k); ok && v != nil {
			votes = safeInt(v, 0)
			break
		}
	}
	if votes < 0 {
		votes = 0
	}

	rv := domain.Review{
		ID:           idOf(r, text, dateStr, name, rating),
		Rating:       rating,
		Text:         text,
		Date:         date,
		DateString:   dateStr,
		ReviewerName: name,
		HelpfulVotes: votes,
		WordCount:    len(strings.Fields(text)),
		CharCount:    utf8.RuneCountInString(text),
	}
	return rv, nil
}

// ratingOf extracts the optional rating. A missing rating key is valid;
// a rating that is present but unparseable or outside [1,5] is not.
func ratingOf(r domain.RawReview) (*float64, error) {
	v, ok := lookup(r, "rating")
	if !ok || v == nil {
		return nil, nil
	}
	f, ok := floatFlexible(v)
	if !ok {
		return nil, fmt.Errorf("could not parse rating %v", v)
	}
	if f < 1 || f > 5 {
		return nil, fmt.Errorf("rating %v out of range", f)
	}
	return &f, nil
}

// parseDate tries the known layouts in order, truncating to the calendar
// date. An unmatched string is logged and yields nil rather than an error.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	log.Warn().Str("date", s).Msg("could not parse review date")
	return nil
}

// idOf prefers an upstream identifier, else synthesizes a stable content hash.
func idOf(r domain.RawReview, text, dateStr, name string, rating *float64) string {
	if s := firstStringAlias(r, "id"); s != "" {
		return s
	}
	rt := ""
	if rating != nil {
		rt = fmt.Sprintf("%.3f", *rating)
	}
	sig := strings.Join([]string{text, dateStr, name, rt}, "|")
	sum := sha1.Sum([]byte(sig))
	return "review_" + hex.EncodeToString(sum[:])
}
