package suggestion_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lankatrip/festweather/internal/festival"
	"github.com/lankatrip/festweather/internal/holiday"
	"github.com/lankatrip/festweather/internal/suggestion"
	"github.com/lankatrip/festweather/internal/weather"
)

func evaluateRule(t *testing.T, id string, c suggestion.Context) *suggestion.Suggestion {
	t.Helper()

	for _, r := range suggestion.DefaultRules() {
		if r.ID == id {
			s, err := r.Evaluate(c)
			require.NoError(t, err)
			return s
		}
	}
	t.Fatalf("rule %q not registered", id)
	return nil
}

var (
	perahera = &festival.Festival{
		Name:                 "Esala Perahera",
		Type:                 festival.TypeOutdoor,
		CulturalSignificance: "Sacred tooth relic procession",
	}
	vesak      = &festival.Festival{Name: "Vesak", Type: festival.TypeReligious}
	poyaDay    = &holiday.Holiday{Name: "Esala Full Moon Poya Day", IsPublic: true}
	observance = &holiday.Holiday{Name: "Valentine's Day", IsPublic: false}
)

func TestRule_RainOutdoorFestival(t *testing.T) {
	tests := []struct {
		name     string
		rainfall float64
		fest     *festival.Festival
		fires    bool
	}{
		{"heavy rain at outdoor festival", 6, perahera, true},
		{"threshold is exclusive", 5, perahera, false},
		{"religious festival", 20, vesak, false},
		{"no festival", 20, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := evaluateRule(t, "rain_outdoor_festival", suggestion.Context{
				Weather:  &weather.Snapshot{Rainfall: tt.rainfall},
				Festival: tt.fest,
			})
			if !tt.fires {
				assert.Nil(t, s)
				return
			}
			require.NotNil(t, s)
			assert.Equal(t, suggestion.TypeWarning, s.Type)
			assert.Equal(t, "Heavy rain expected during Esala Perahera. Consider indoor alternatives.", s.Message)
			assert.Len(t, s.Alternatives, 3)
		})
	}
}

func TestRule_HolidayAttractionClosed(t *testing.T) {
	s := evaluateRule(t, "holiday_attraction_closed", suggestion.Context{Holiday: poyaDay})
	require.NotNil(t, s)
	assert.Equal(t, suggestion.TypeAlert, s.Type)
	assert.Equal(t, "Attractions may be closed on Esala Full Moon Poya Day. Verify opening hours before visiting.", s.Message)

	assert.Nil(t, evaluateRule(t, "holiday_attraction_closed", suggestion.Context{Holiday: observance}))
	assert.Nil(t, evaluateRule(t, "holiday_attraction_closed", suggestion.Context{}))
}

func TestRule_FestivalCrowdWarning(t *testing.T) {
	s := evaluateRule(t, "festival_crowd_warning", suggestion.Context{Festival: perahera, CrowdPrediction: 71})
	require.NotNil(t, s)
	assert.Equal(t, suggestion.TypeInfo, s.Type)
	assert.Equal(t, "Visit early morning (6-8 AM)", s.Suggestions[0])

	assert.Nil(t, evaluateRule(t, "festival_crowd_warning", suggestion.Context{Festival: perahera, CrowdPrediction: 70}))
	assert.Nil(t, evaluateRule(t, "festival_crowd_warning", suggestion.Context{CrowdPrediction: 100}))
}

func TestRule_PerfectWeatherFestival(t *testing.T) {
	sunny := &weather.Snapshot{Condition: weather.ConditionClear, Rainfall: 0.5}

	s := evaluateRule(t, "perfect_weather_festival", suggestion.Context{Weather: sunny, Festival: perahera})
	require.NotNil(t, s)
	assert.Equal(t, suggestion.TypeRecommendation, s.Type)
	assert.Equal(t, "Perfect weather for Esala Perahera! Great time to visit and experience the cultural festivities.", s.Message)
	require.NotNil(t, s.CulturalInfo)
	assert.Equal(t, "Sacred tooth relic procession", *s.CulturalInfo)

	tests := []struct {
		name string
		c    suggestion.Context
	}{
		{"rain", suggestion.Context{Weather: &weather.Snapshot{Condition: weather.ConditionRain}, Festival: perahera}},
		{"drizzle above threshold", suggestion.Context{Weather: &weather.Snapshot{Condition: weather.ConditionClouds, Rainfall: 1}, Festival: perahera}},
		{"holiday present", suggestion.Context{Weather: sunny, Festival: perahera, Holiday: observance}},
		{"no festival", suggestion.Context{Weather: sunny}},
		{"no weather", suggestion.Context{Festival: perahera}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, evaluateRule(t, "perfect_weather_festival", tt.c))
		})
	}
}

func TestRule_HotWeatherWarning(t *testing.T) {
	s := evaluateRule(t, "hot_weather_warning", suggestion.Context{Weather: &weather.Snapshot{Temperature: 35.1}})
	require.NotNil(t, s)
	assert.Len(t, s.Suggestions, 4)

	assert.Nil(t, evaluateRule(t, "hot_weather_warning", suggestion.Context{Weather: &weather.Snapshot{Temperature: 35}}))
}

func TestRule_MonsoonSeasonWarning(t *testing.T) {
	tests := []struct {
		name     string
		rainfall float64
		humidity int
		fires    bool
	}{
		{"heavy rain", 10.5, 50, true},
		{"humid", 0, 86, true},
		{"at thresholds", 10, 85, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := evaluateRule(t, "monsoon_season_warning", suggestion.Context{
				Weather: &weather.Snapshot{Rainfall: tt.rainfall, Humidity: tt.humidity},
			})
			assert.Equal(t, tt.fires, s != nil)
		})
	}
}

func TestRule_ReligiousFestivalRespect(t *testing.T) {
	s := evaluateRule(t, "religious_festival_respect", suggestion.Context{Festival: vesak})
	require.NotNil(t, s)
	assert.Equal(t, "Vesak is a religious festival. Please dress modestly and respect local customs.", s.Message)

	assert.Nil(t, evaluateRule(t, "religious_festival_respect", suggestion.Context{Festival: perahera}))
}

func TestSuggestion_JSONEncodesAbsentFieldsAsNull(t *testing.T) {
	s := evaluateRule(t, "hot_weather_warning", suggestion.Context{Weather: &weather.Snapshot{Temperature: 38}})
	require.NotNil(t, s)

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "alternatives")
	assert.Nil(t, decoded["alternatives"])
	assert.Nil(t, decoded["cultural_info"])
	assert.Equal(t, "warning", decoded["type"])
}
