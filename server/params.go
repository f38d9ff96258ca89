package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"lunars/server/store"
)

// queryParser collects list filters from the URL query. The first bad
// value is kept and reported by err.
type queryParser struct {
	values url.Values
	err    error
}

func newQueryParser(r *http.Request) *queryParser {
	return &queryParser{values: r.URL.Query()}
}

func (p *queryParser) fail(key, raw, want string) {
	if p.err == nil {
		p.err = errInvalid(fmt.Sprintf("%s: %q is not %s", key, raw, want))
	}
}

func (p *queryParser) float(key string) *float64 {
	raw := p.values.Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(key, raw, "a number")
		return nil
	}
	return &v
}

func (p *queryParser) count(key string) int {
	raw := p.values.Get(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		p.fail(key, raw, "a non-negative integer")
		return 0
	}
	return v
}

func (p *queryParser) id(key string) *int64 {
	raw := p.values.Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.fail(key, raw, "an id")
		return nil
	}
	return &v
}

func (p *queryParser) time(key string) *time.Time {
	raw := p.values.Get(key)
	if raw == "" {
		return nil
	}
	t, ok := parseTimestamp(raw)
	if !ok {
		p.fail(key, raw, "an RFC 3339 timestamp or unix milliseconds")
		return nil
	}
	return &t
}

// list returns every value of a repeated key, also splitting on commas.
func (p *queryParser) list(key string) []string {
	var out []string
	for _, v := range p.values[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (p *queryParser) common(q *store.QueryParams) {
	q.Sort = store.ParseSort(p.values.Get("sort"))
	q.Limit = p.count("limit")
	q.Offset = p.count("offset")
}

func parsePlayerQuery(r *http.Request) (store.QueryParams, error) {
	p := newQueryParser(r)
	q := store.QueryParams{
		MinRating:     p.float("min_rating"),
		MaxRating:     p.float("max_rating"),
		MinDeviation:  p.float("min_deviation"),
		MaxDeviation:  p.float("max_deviation"),
		MinVolatility: p.float("min_volatility"),
		MaxVolatility: p.float("max_volatility"),
	}
	p.common(&q)
	return q, p.err
}

// parseMatchQuery leaves has_player unresolved; the returned names or ids
// are looked up by the caller.
func parseMatchQuery(r *http.Request) (store.QueryParams, []string, error) {
	p := newQueryParser(r)
	q := store.QueryParams{
		After:        p.time("after"),
		Before:       p.time("before"),
		RatingPeriod: p.id("season"),
	}
	p.common(&q)
	return q, p.list("has_player"), p.err
}

func parseSeasonQuery(r *http.Request) (store.QueryParams, error) {
	p := newQueryParser(r)
	q := store.QueryParams{
		StartAfter:  p.time("start_after"),
		StartBefore: p.time("start_before"),
		EndAfter:    p.time("end_after"),
		EndBefore:   p.time("end_before"),
	}
	p.common(&q)
	return q, p.err
}

// parseTimestamp accepts RFC 3339 or unix milliseconds.
func parseTimestamp(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), true
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	return time.Time{}, false
}

func pathID(r *http.Request, key string) (int64, error) {
	raw := chi.URLParam(r, key)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errStatus(http.StatusNotFound)
	}
	return id, nil
}
