// Package holiday provides cached public-holiday lookups for a country.
package holiday

import (
	"errors"
	"slices"

	"cloud.google.com/go/civil"
)

// Holiday errors.
var (
	// ErrProviderUnavailable wraps any failure to obtain the holiday list.
	ErrProviderUnavailable = errors.New("holiday provider unavailable")

	// ErrUpstreamRejected is returned when the upstream answers with an
	// embedded non-success code.
	ErrUpstreamRejected = errors.New("holiday provider rejected request")
)

// NationalHolidayType marks a holiday as a public (national) holiday.
const NationalHolidayType = "National holiday"

// Holiday is one calendar entry returned by the provider.
type Holiday struct {
	Name        string     `json:"name"`
	Date        civil.Date `json:"date"`
	Types       []string   `json:"type"`
	Description string     `json:"description"`
	IsPublic    bool       `json:"is_public"`
	PrimaryType string     `json:"primary_type"`
	Country     string     `json:"country"`

	// DaysUntil is set only on results of GetUpcomingHolidays.
	DaysUntil *int `json:"days_until,omitempty"`
}

// IsNational reports whether types contains the national holiday marker.
func IsNational(types []string) bool {
	return slices.Contains(types, NationalHolidayType)
}
