// Package worker warms the weather and holiday caches in the background.
package worker

import (
	"cmp"
	"slices"
	"time"
)

// Destination is a place travellers commonly ask about.
type Destination struct {
	Name string
	Lat  float64
	Lon  float64

	// Priority determines warm-up order (lower = higher priority).
	Priority int
}

// WarmupConfig holds configuration for the cache warm-up job.
type WarmupConfig struct {
	// Destinations to pre-fetch weather for.
	// If empty, uses DefaultDestinations.
	Destinations []Destination

	// Concurrency is the number of destinations fetched at once.
	// Default: 3
	Concurrency int

	// Timeout bounds the fetches for a single destination.
	// Default: 30 seconds
	Timeout time.Duration

	// WarmWeather pre-fetches current weather.
	WarmWeather bool

	// WarmForecast pre-fetches the multi-day forecast.
	WarmForecast bool

	// WarmHolidays pre-fetches this year's and next year's holiday lists.
	WarmHolidays bool
}

// DefaultWarmupConfig returns the default warm-up configuration.
func DefaultWarmupConfig() WarmupConfig {
	return WarmupConfig{
		Destinations: DefaultDestinations(),
		Concurrency:  3,
		Timeout:      30 * time.Second,
		WarmWeather:  true,
		WarmForecast: true,
		WarmHolidays: true,
	}
}

// DefaultDestinations returns the Sri Lankan destinations with the most
// dashboard traffic.
func DefaultDestinations() []Destination {
	return []Destination{
		{Name: "Colombo", Lat: 6.9271, Lon: 79.8612, Priority: 1},
		{Name: "Kandy", Lat: 7.2906, Lon: 80.6337, Priority: 1},
		{Name: "Galle", Lat: 6.0535, Lon: 80.2210, Priority: 1},
		{Name: "Sigiriya", Lat: 7.9570, Lon: 80.7603, Priority: 1},
		{Name: "Nuwara Eliya", Lat: 6.9497, Lon: 80.7891, Priority: 2},
		{Name: "Ella", Lat: 6.8667, Lon: 81.0466, Priority: 2},
		{Name: "Anuradhapura", Lat: 8.3114, Lon: 80.4037, Priority: 2},
		{Name: "Jaffna", Lat: 9.6615, Lon: 80.0255, Priority: 2},
		{Name: "Trincomalee", Lat: 8.5874, Lon: 81.2152, Priority: 3},
		{Name: "Mirissa", Lat: 5.9483, Lon: 80.4716, Priority: 3},
		{Name: "Polonnaruwa", Lat: 7.9403, Lon: 81.0188, Priority: 3},
		{Name: "Kelaniya", Lat: 6.9553, Lon: 79.9220, Priority: 3},
	}
}

// Ordered returns the destinations sorted by priority, keeping the
// configured order within a priority.
func (c WarmupConfig) Ordered() []Destination {
	out := slices.Clone(c.Destinations)
	slices.SortStableFunc(out, func(a, b Destination) int { return cmp.Compare(a.Priority, b.Priority) })
	return out
}
