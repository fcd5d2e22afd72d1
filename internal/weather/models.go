package weather

import (
	"errors"
	"time"
)

// Weather errors.
var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
)

// Condition is the upstream's main weather group, e.g. "Rain" or "Clear".
type Condition string

const (
	ConditionClear        Condition = "Clear"
	ConditionClouds       Condition = "Clouds"
	ConditionRain         Condition = "Rain"
	ConditionDrizzle      Condition = "Drizzle"
	ConditionThunderstorm Condition = "Thunderstorm"
	ConditionSnow         Condition = "Snow"
	ConditionMist         Condition = "Mist"
	ConditionFog          Condition = "Fog"
	ConditionHaze         Condition = "Haze"
	ConditionUnknown      Condition = "Unknown"
)

// IsWet reports whether the condition implies precipitation.
func (c Condition) IsWet() bool {
	switch c {
	case ConditionRain, ConditionDrizzle, ConditionThunderstorm:
		return true
	default:
		return false
	}
}

// Snapshot is the current weather at a location.
type Snapshot struct {
	Location    string    `json:"location"`
	Temperature float64   `json:"temperature"` // Celsius
	FeelsLike   float64   `json:"feels_like"`  // Celsius
	Condition   Condition `json:"condition"`
	Description string    `json:"description"`
	Humidity    int       `json:"humidity"`   // percent
	Pressure    int       `json:"pressure"`   // hPa
	WindSpeed   float64   `json:"wind_speed"` // m/s
	Rainfall    float64   `json:"rainfall"`   // mm over the last hour
	Icon        string    `json:"icon"`
	Timestamp   time.Time `json:"timestamp"`
}

// ForecastPoint is one 3-hour forecast step.
type ForecastPoint struct {
	// DateTime is the upstream step label, e.g. "2026-05-15 12:00:00".
	DateTime    string    `json:"datetime"`
	Temperature float64   `json:"temperature"`
	Condition   Condition `json:"condition"`
	Description string    `json:"description"`
	Rainfall    float64   `json:"rainfall"` // mm over the 3-hour step
	Humidity    int       `json:"humidity"`
	Icon        string    `json:"icon"`
}

// Alert is a severe weather warning issued for a location.
type Alert struct {
	Event       string `json:"event"`
	Start       int64  `json:"start"` // unix seconds
	End         int64  `json:"end"`   // unix seconds
	Description string `json:"description"`
	Sender      string `json:"sender"`
}
