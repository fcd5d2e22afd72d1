package suggestion_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lankatrip/festweather/internal/festival"
	"github.com/lankatrip/festweather/internal/holiday"
	"github.com/lankatrip/festweather/internal/suggestion"
	"github.com/lankatrip/festweather/internal/weather"
)

type fakeWeather struct {
	snapshot *weather.Snapshot
	err      error
	calls    atomic.Int32
}

func (f *fakeWeather) GetCurrentWeather(_ context.Context, _, _ float64) (*weather.Snapshot, error) {
	f.calls.Add(1)
	return f.snapshot, f.err
}

type fakeHolidays struct {
	holidays    []holiday.Holiday
	err         error
	yearCalls   atomic.Int32
	lookupCalls atomic.Int32
}

func (f *fakeHolidays) CheckIfHoliday(_ context.Context, date civil.Date) (*holiday.Holiday, error) {
	f.lookupCalls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return holiday.FirstOn(f.holidays, date), nil
}

func (f *fakeHolidays) GetPublicHolidays(_ context.Context, _ int) ([]holiday.Holiday, error) {
	f.yearCalls.Add(1)
	return f.holidays, f.err
}

type fakeFestivals struct {
	festivals []*festival.Festival
	err       error
}

func (f *fakeFestivals) OnDate(_ context.Context, date civil.Date) ([]*festival.Festival, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*festival.Festival, 0)
	for _, fest := range f.festivals {
		if fest.OccursOn(date) {
			out = append(out, fest)
		}
	}
	return out, nil
}

var (
	kandy     = suggestion.Location{Lat: 7.2906, Lon: 80.6337}
	esalaPoya = civil.Date{Year: 2026, Month: 7, Day: 29}
)

type fixture struct {
	weather   *fakeWeather
	holidays  *fakeHolidays
	festivals *fakeFestivals
	svc       *suggestion.Service
}

func newFixture() *fixture {
	f := &fixture{
		weather: &fakeWeather{snapshot: &weather.Snapshot{
			Location:    "Kandy",
			Temperature: 29,
			Condition:   weather.ConditionRain,
			Humidity:    80,
			Rainfall:    7.5,
		}},
		holidays: &fakeHolidays{holidays: []holiday.Holiday{
			{Name: "Esala Full Moon Poya Day", Date: esalaPoya, IsPublic: true},
			{Name: "Bank Holiday", Date: esalaPoya, IsPublic: false},
			{Name: "Independence Day", Date: civil.Date{Year: 2026, Month: 2, Day: 4}, IsPublic: true},
		}},
		festivals: &fakeFestivals{festivals: []*festival.Festival{
			{
				ID:        1,
				Name:      "Esala Perahera",
				StartDate: civil.Date{Year: 2026, Month: 7, Day: 25},
				EndDate:   civil.Date{Year: 2026, Month: 8, Day: 5},
				Type:      festival.TypeOutdoor,
			},
			{
				ID:        2,
				Name:      "Kandy Perahera",
				StartDate: civil.Date{Year: 2026, Month: 7, Day: 25},
				EndDate:   civil.Date{Year: 2026, Month: 8, Day: 5},
				Type:      festival.TypeOutdoor,
			},
		}},
	}

	f.svc = suggestion.NewService(suggestion.ServiceConfig{
		Weather:   f.weather,
		Holidays:  f.holidays,
		Festivals: f.festivals,
		Logger:    zerolog.Nop(),
	})
	return f
}

func TestService_GenerateSuggestions(t *testing.T) {
	f := newFixture()

	got := f.svc.GenerateSuggestions(context.Background(), kandy, esalaPoya, 90)

	assert.Equal(t, []string{
		"rain_outdoor_festival",
		"holiday_attraction_closed",
		"festival_crowd_warning",
	}, ruleIDs(got))
	assert.Contains(t, got[0].Message, "Esala Perahera", "first festival on the date is used")
	assert.Equal(t, int32(1), f.holidays.lookupCalls.Load())
}

func TestService_GenerateSuggestions_FailuresYieldEmpty(t *testing.T) {
	tests := []struct {
		name        string
		breakSource func(*fixture)
	}{
		{"weather", func(f *fixture) { f.weather.err = weather.ErrProviderUnavailable }},
		{"holidays", func(f *fixture) { f.holidays.err = holiday.ErrProviderUnavailable }},
		{"festivals", func(f *fixture) { f.festivals.err = errors.New("database is locked") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.breakSource(f)

			got := f.svc.GenerateSuggestions(context.Background(), kandy, esalaPoya, 90)
			require.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestService_BuildDashboard(t *testing.T) {
	f := newFixture()

	dash, err := f.svc.BuildDashboard(context.Background(), "Kandy", kandy, esalaPoya)
	require.NoError(t, err)

	assert.Equal(t, "Kandy", dash.Location)
	assert.Equal(t, esalaPoya, dash.Date)
	assert.Equal(t, 7.5, dash.Weather.Rainfall)
	require.Len(t, dash.Holidays, 2, "holidays are filtered to the date")
	assert.Equal(t, "Esala Full Moon Poya Day", dash.Holidays[0].Name)
	assert.Len(t, dash.Festivals, 2)

	// Default crowd prediction is below the crowd warning threshold.
	assert.Equal(t, []string{"rain_outdoor_festival", "holiday_attraction_closed"}, ruleIDs(dash.Suggestions))

	assert.Equal(t, int32(1), f.weather.calls.Load(), "weather is fetched once per dashboard")
	assert.Equal(t, int32(1), f.holidays.yearCalls.Load())
	assert.Zero(t, f.holidays.lookupCalls.Load())
}

func TestService_BuildDashboard_QuietDay(t *testing.T) {
	f := newFixture()
	f.weather.snapshot = &weather.Snapshot{Temperature: 27, Condition: weather.ConditionClear, Humidity: 60}

	dash, err := f.svc.BuildDashboard(context.Background(), "Galle", suggestion.Location{Lat: 6.0535, Lon: 80.2210}, civil.Date{Year: 2026, Month: 3, Day: 3})
	require.NoError(t, err)

	assert.NotNil(t, dash.Holidays)
	assert.Empty(t, dash.Holidays)
	assert.Empty(t, dash.Festivals)
	assert.NotNil(t, dash.Suggestions)
	assert.Empty(t, dash.Suggestions)
}

func TestService_BuildDashboard_PropagatesFailures(t *testing.T) {
	f := newFixture()
	f.weather.err = weather.ErrProviderUnavailable

	_, err := f.svc.BuildDashboard(context.Background(), "Kandy", kandy, esalaPoya)
	assert.ErrorIs(t, err, weather.ErrProviderUnavailable)

	f = newFixture()
	f.holidays.err = holiday.ErrProviderUnavailable

	_, err = f.svc.BuildDashboard(context.Background(), "Kandy", kandy, esalaPoya)
	assert.ErrorIs(t, err, holiday.ErrProviderUnavailable)
}
