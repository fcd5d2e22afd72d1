// Package festival stores the curated festival calendar and answers the
// date and location queries the suggestion engine depends on.
package festival

import (
	"errors"

	"cloud.google.com/go/civil"
)

// Festival errors.
var (
	ErrFestivalNotFound = errors.New("festival not found")
)

// Type classifies a festival for rule evaluation.
type Type string

const (
	TypeOutdoor   Type = "outdoor"
	TypeIndoor    Type = "indoor"
	TypeReligious Type = "religious"
	TypeCultural  Type = "cultural"
)

// Valid reports whether t is one of the known festival types.
func (t Type) Valid() bool {
	switch t {
	case TypeOutdoor, TypeIndoor, TypeReligious, TypeCultural:
		return true
	default:
		return false
	}
}

// Festival is a dated cultural event at a location.
// Records are never removed; deletion sets IsActive to false.
type Festival struct {
	ID                   int64      `json:"id"`
	Name                 string     `json:"name"`
	Location             string     `json:"location"`
	StartDate            civil.Date `json:"start_date"`
	EndDate              civil.Date `json:"end_date"`
	Type                 Type       `json:"type"`
	Description          string     `json:"description"`
	CulturalSignificance string     `json:"cultural_significance"`
	IsActive             bool       `json:"is_active"`
}

// OccursOn reports whether d falls within the festival, inclusive.
func (f *Festival) OccursOn(d civil.Date) bool {
	return f.Overlaps(d, d)
}

// Overlaps reports whether the festival intersects [start, end].
func (f *Festival) Overlaps(start, end civil.Date) bool {
	return !f.StartDate.After(end) && !f.EndDate.Before(start)
}

// SearchFilter narrows Search results. Zero fields are ignored.
type SearchFilter struct {
	// Location matches case-insensitively as a substring.
	Location string

	// Type matches exactly.
	Type Type

	// From keeps festivals ending on or after this date.
	From *civil.Date

	// To keeps festivals starting on or before this date.
	To *civil.Date
}

// Matches applies the filter to a single festival, ignoring IsActive.
func (sf SearchFilter) Matches(f *Festival) bool {
	if sf.Location != "" && !containsFold(f.Location, sf.Location) {
		return false
	}
	if sf.Type != "" && f.Type != sf.Type {
		return false
	}
	if sf.From != nil && f.EndDate.Before(*sf.From) {
		return false
	}
	if sf.To != nil && f.StartDate.After(*sf.To) {
		return false
	}
	return true
}

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError is returned when festival input fails validation.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
