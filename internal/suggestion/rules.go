package suggestion

import (
	"github.com/lankatrip/festweather/internal/festival"
	"github.com/lankatrip/festweather/internal/weather"
)

// Rule inspects a Context and optionally produces a suggestion.
// Evaluate returns nil when the rule does not apply. The engine stamps
// RuleID and Priority onto whatever Evaluate returns.
type Rule struct {
	ID       string
	Priority Priority
	Evaluate func(c Context) (*Suggestion, error)
}

// Rule thresholds.
const (
	HeavyRainMM      = 5.0
	MonsoonRainMM    = 10.0
	MonsoonHumidity  = 85
	DryRainMM        = 1.0
	HotTemperatureC  = 35.0
	HighCrowdPercent = 70
)

// DefaultRules returns the built-in rule set in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{ID: "rain_outdoor_festival", Priority: PriorityHigh, Evaluate: rainOutdoorFestival},
		{ID: "holiday_attraction_closed", Priority: PriorityHigh, Evaluate: holidayAttractionClosed},
		{ID: "festival_crowd_warning", Priority: PriorityMedium, Evaluate: festivalCrowdWarning},
		{ID: "perfect_weather_festival", Priority: PriorityLow, Evaluate: perfectWeatherFestival},
		{ID: "hot_weather_warning", Priority: PriorityMedium, Evaluate: hotWeatherWarning},
		{ID: "monsoon_season_warning", Priority: PriorityHigh, Evaluate: monsoonSeasonWarning},
		{ID: "religious_festival_respect", Priority: PriorityMedium, Evaluate: religiousFestivalRespect},
	}
}

func rainOutdoorFestival(c Context) (*Suggestion, error) {
	if c.Weather == nil || c.Weather.Rainfall <= HeavyRainMM {
		return nil, nil
	}
	if c.Festival == nil || c.Festival.Type != festival.TypeOutdoor {
		return nil, nil
	}

	return &Suggestion{
		Type:    TypeWarning,
		Message: "Heavy rain expected during " + c.Festival.Name + ". Consider indoor alternatives.",
		Alternatives: []string{
			"Visit indoor museums nearby",
			"Reschedule visit to another day",
			"Check covered viewing areas",
		},
	}, nil
}

func holidayAttractionClosed(c Context) (*Suggestion, error) {
	if c.Holiday == nil || !c.Holiday.IsPublic {
		return nil, nil
	}

	return &Suggestion{
		Type:    TypeAlert,
		Message: "Attractions may be closed on " + c.Holiday.Name + ". Verify opening hours before visiting.",
		Alternatives: []string{
			"Visit on alternative date",
			"Check attraction schedule in advance",
			"Contact venue for confirmation",
		},
	}, nil
}

func festivalCrowdWarning(c Context) (*Suggestion, error) {
	if c.Festival == nil || c.CrowdPrediction <= HighCrowdPercent {
		return nil, nil
	}

	return &Suggestion{
		Type:    TypeInfo,
		Message: "High crowds expected during " + c.Festival.Name + ". Visit during off-peak hours for better experience.",
		Suggestions: []string{
			"Visit early morning (6-8 AM)",
			"Visit on weekdays instead of weekends",
			"Book tickets in advance",
		},
	}, nil
}

func perfectWeatherFestival(c Context) (*Suggestion, error) {
	if c.Weather == nil || c.Festival == nil || c.Holiday != nil {
		return nil, nil
	}
	if c.Weather.Condition != weather.ConditionClear && c.Weather.Condition != weather.ConditionClouds {
		return nil, nil
	}
	if c.Weather.Rainfall >= DryRainMM {
		return nil, nil
	}

	info := c.Festival.CulturalSignificance
	return &Suggestion{
		Type:         TypeRecommendation,
		Message:      "Perfect weather for " + c.Festival.Name + "! Great time to visit and experience the cultural festivities.",
		CulturalInfo: &info,
	}, nil
}

func hotWeatherWarning(c Context) (*Suggestion, error) {
	if c.Weather == nil || c.Weather.Temperature <= HotTemperatureC {
		return nil, nil
	}

	return &Suggestion{
		Type:    TypeWarning,
		Message: "Very hot weather expected. Take precautions to stay hydrated and avoid heat exhaustion.",
		Suggestions: []string{
			"Carry water bottle",
			"Wear sunscreen and hat",
			"Take breaks in shaded areas",
			"Avoid midday sun (11 AM - 3 PM)",
		},
	}, nil
}

func monsoonSeasonWarning(c Context) (*Suggestion, error) {
	if c.Weather == nil {
		return nil, nil
	}
	if c.Weather.Rainfall <= MonsoonRainMM && c.Weather.Humidity <= MonsoonHumidity {
		return nil, nil
	}

	return &Suggestion{
		Type:    TypeAlert,
		Message: "Heavy monsoon conditions expected. Outdoor activities may be affected.",
		Alternatives: []string{
			"Visit indoor attractions",
			"Carry rain gear",
			"Check for weather updates regularly",
		},
	}, nil
}

func religiousFestivalRespect(c Context) (*Suggestion, error) {
	if c.Festival == nil || c.Festival.Type != festival.TypeReligious {
		return nil, nil
	}

	return &Suggestion{
		Type:    TypeInfo,
		Message: c.Festival.Name + " is a religious festival. Please dress modestly and respect local customs.",
		Suggestions: []string{
			"Wear modest clothing covering shoulders and knees",
			"Remove shoes when entering temples",
			"Ask permission before taking photos",
			"Maintain respectful behavior",
		},
	}, nil
}
