package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/stockledger/internal/apperr"
	"github.com/erazemk/stockledger/internal/store"
)

const dateLayout = "2006-01-02"

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid %s", name)
	}
	return id, nil
}

// queryID parses an optional positive integer query parameter. Absent
// parameters yield 0.
func queryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid %s", name)
	}
	return id, nil
}

// queryLimit parses the limit parameter, applying def when absent and
// capping at ceiling.
func queryLimit(r *http.Request, def, ceiling int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, apperr.Validation("invalid limit")
	}
	return min(n, ceiling), nil
}

// queryBool parses an optional boolean query parameter.
func queryBool(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.Validation("invalid %s", name)
	}
	return &b, nil
}

// queryRange reads start_date and end_date. A bare date as end_date covers
// the whole day.
func queryRange(r *http.Request) (store.Range, error) {
	var rng store.Range
	q := r.URL.Query()

	if raw := q.Get("start_date"); raw != "" {
		t, _, err := parseDate(raw)
		if err != nil {
			return rng, apperr.Validation("invalid start_date")
		}
		if t.IsZero() {
			return rng, apperr.Validation("start_date out of range")
		}
		rng.From = t
	}
	if raw := q.Get("end_date"); raw != "" {
		t, dateOnly, err := parseDate(raw)
		if err != nil {
			return rng, apperr.Validation("invalid end_date")
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1).Add(-time.Microsecond)
		}
		if t.IsZero() {
			return rng, apperr.Validation("end_date out of range")
		}
		rng.To = t
	}
	if !rng.From.IsZero() && !rng.To.IsZero() && rng.To.Before(rng.From) {
		return rng, apperr.Validation("end date is before start date")
	}
	return rng, nil
}

// parseDate accepts YYYY-MM-DD (midnight UTC) or RFC 3339.
func parseDate(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t.UTC(), true, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.UTC(), false, nil
}
