// Package suggestion turns weather, holiday and festival data into
// prioritized travel advice and assembles the destination dashboard.
package suggestion

import (
	"cloud.google.com/go/civil"

	"github.com/lankatrip/festweather/internal/festival"
	"github.com/lankatrip/festweather/internal/holiday"
	"github.com/lankatrip/festweather/internal/weather"
)

// DefaultCrowdPrediction is the crowd level assumed when none is given.
const DefaultCrowdPrediction = 50

// Type categorizes a suggestion.
type Type string

const (
	TypeWarning        Type = "warning"
	TypeAlert          Type = "alert"
	TypeInfo           Type = "info"
	TypeRecommendation Type = "recommendation"
)

// Priority orders suggestions for display.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns the sort rank of p, lowest first. Unknown priorities rank
// as medium.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityLow:
		return 3
	default:
		return 2
	}
}

// Suggestion is one piece of advice produced by a rule.
// Absent optional fields encode as null.
type Suggestion struct {
	Type         Type     `json:"type"`
	Priority     Priority `json:"priority"`
	Message      string   `json:"message"`
	RuleID       string   `json:"rule_id"`
	Alternatives []string `json:"alternatives"`
	Suggestions  []string `json:"suggestions"`
	CulturalInfo *string  `json:"cultural_info"`
}

// Context is the merged per-request state the rules inspect.
// Weather is nil when it could not be fetched; Holiday and Festival are nil
// when none applies.
type Context struct {
	Weather         *weather.Snapshot
	Holiday         *holiday.Holiday
	Festival        *festival.Festival
	CrowdPrediction int
}

// Location is a point to fetch weather for.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Dashboard is the combined view of a destination on one date.
type Dashboard struct {
	Location    string               `json:"location"`
	Date        civil.Date           `json:"date"`
	Weather     *weather.Snapshot    `json:"weather"`
	Holidays    []holiday.Holiday    `json:"holidays"`
	Festivals   []*festival.Festival `json:"festivals"`
	Suggestions []Suggestion         `json:"suggestions"`
}
