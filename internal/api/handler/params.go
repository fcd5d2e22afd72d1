package handler

import (
	"net/http"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/lankatrip/festweather/internal/api/models"
)

// queryParams accumulates field errors while reading query parameters so a
// handler can report every bad field in one response.
type queryParams struct {
	r      *http.Request
	errors []models.FieldError
}

func newQueryParams(r *http.Request) *queryParams {
	return &queryParams{r: r}
}

func (q *queryParams) fail(field, message, code string) {
	q.errors = append(q.errors, models.FieldError{Field: field, Message: message, Code: code})
}

func (q *queryParams) value(name string) string {
	return strings.TrimSpace(q.r.URL.Query().Get(name))
}

// Valid reports whether no parameter failed to parse.
func (q *queryParams) Valid() bool {
	return len(q.errors) == 0
}

// Errors returns the collected field errors.
func (q *queryParams) Errors() []models.FieldError {
	return q.errors
}

// RequiredString reads a non-empty string.
func (q *queryParams) RequiredString(name string) string {
	v := q.value(name)
	if v == "" {
		q.fail(name, "is required", "REQUIRED")
	}
	return v
}

// Float reads a required float within [lo, hi].
func (q *queryParams) Float(name string, lo, hi float64) float64 {
	raw := q.value(name)
	if raw == "" {
		q.fail(name, "is required", "REQUIRED")
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		q.fail(name, "must be a number", "INVALID_NUMBER")
		return 0
	}
	if v < lo || v > hi {
		q.fail(name, "must be between "+formatFloat(lo)+" and "+formatFloat(hi), "OUT_OF_RANGE")
	}
	return v
}

// Coordinates reads lat and lon.
func (q *queryParams) Coordinates() (lat, lon float64) {
	return q.Float("lat", -90, 90), q.Float("lon", -180, 180)
}

// Int reads an optional integer within [lo, hi], returning def when absent.
func (q *queryParams) Int(name string, def, lo, hi int) int {
	raw := q.value(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		q.fail(name, "must be an integer", "INVALID_INTEGER")
		return def
	}
	if v < lo || v > hi {
		q.fail(name, "must be between "+strconv.Itoa(lo)+" and "+strconv.Itoa(hi), "OUT_OF_RANGE")
	}
	return v
}

// Date reads a required YYYY-MM-DD date.
func (q *queryParams) Date(name string) civil.Date {
	raw := q.value(name)
	if raw == "" {
		q.fail(name, "is required", "REQUIRED")
		return civil.Date{}
	}
	return q.parseDate(name, raw)
}

// OptionalDate reads a YYYY-MM-DD date, returning nil when absent.
func (q *queryParams) OptionalDate(name string) *civil.Date {
	raw := q.value(name)
	if raw == "" {
		return nil
	}
	d := q.parseDate(name, raw)
	if !d.IsValid() {
		return nil
	}
	return &d
}

func (q *queryParams) parseDate(name, raw string) civil.Date {
	d, err := civil.ParseDate(raw)
	if err != nil {
		q.fail(name, "invalid date format, use YYYY-MM-DD", "INVALID_DATE")
		return civil.Date{}
	}
	return d
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
