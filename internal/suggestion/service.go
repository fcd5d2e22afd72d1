package suggestion

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lankatrip/festweather/internal/festival"
	"github.com/lankatrip/festweather/internal/holiday"
	"github.com/lankatrip/festweather/internal/weather"
)

// WeatherSource provides current conditions for a location.
type WeatherSource interface {
	GetCurrentWeather(ctx context.Context, lat, lon float64) (*weather.Snapshot, error)
}

// HolidaySource provides holiday lookups.
type HolidaySource interface {
	CheckIfHoliday(ctx context.Context, date civil.Date) (*holiday.Holiday, error)
	GetPublicHolidays(ctx context.Context, year int) ([]holiday.Holiday, error)
}

// FestivalSource provides festivals running on a date.
type FestivalSource interface {
	OnDate(ctx context.Context, date civil.Date) ([]*festival.Festival, error)
}

// ServiceConfig holds configuration for the suggestion service.
type ServiceConfig struct {
	Weather   WeatherSource
	Holidays  HolidaySource
	Festivals FestivalSource

	// Engine evaluates the rules (default: DefaultRules).
	Engine *Engine

	Logger zerolog.Logger
}

// Service aggregates the three data sources and runs the rule engine.
type Service struct {
	weather   WeatherSource
	holidays  HolidaySource
	festivals FestivalSource
	engine    *Engine
	logger    zerolog.Logger
}

// NewService creates a new suggestion service.
func NewService(cfg ServiceConfig) *Service {
	engine := cfg.Engine
	if engine == nil {
		engine = NewEngine(EngineConfig{Logger: cfg.Logger})
	}

	return &Service{
		weather:   cfg.Weather,
		holidays:  cfg.Holidays,
		festivals: cfg.Festivals,
		engine:    engine,
		logger:    cfg.Logger,
	}
}

// GenerateSuggestions returns prioritized suggestions for a location and
// date. Weather and holiday data are fetched concurrently. Any fetch
// failure yields an empty list rather than an error.
func (s *Service) GenerateSuggestions(ctx context.Context, loc Location, date civil.Date, crowdPrediction int) []Suggestion {
	start := time.Now()

	festivals, err := s.festivals.OnDate(ctx, date)
	if err != nil {
		s.logger.Error().Err(err).Str("date", date.String()).Msg("suggestion generation failed")
		return []Suggestion{}
	}

	var (
		snapshot *weather.Snapshot
		today    *holiday.Holiday
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snapshot, err = s.weather.GetCurrentWeather(gctx, loc.Lat, loc.Lon)
		return err
	})
	g.Go(func() error {
		var err error
		today, err = s.holidays.CheckIfHoliday(gctx, date)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).
			Float64("lat", loc.Lat).
			Float64("lon", loc.Lon).
			Str("date", date.String()).
			Msg("suggestion generation failed")
		return []Suggestion{}
	}

	suggestions := s.engine.Evaluate(Context{
		Weather:         snapshot,
		Holiday:         today,
		Festival:        first(festivals),
		CrowdPrediction: crowdPrediction,
	})

	s.logger.Info().
		Float64("lat", loc.Lat).
		Float64("lon", loc.Lon).
		Str("date", date.String()).
		Int("count", len(suggestions)).
		Dur("duration", time.Since(start)).
		Msg("generated suggestions")

	return suggestions
}

// BuildDashboard assembles weather, the date's holidays and festivals, and
// the suggestions derived from them. Unlike GenerateSuggestions, any fetch
// failure is returned to the caller. Suggestions are evaluated on the data
// already fetched with the default crowd prediction.
func (s *Service) BuildDashboard(ctx context.Context, locationName string, loc Location, date civil.Date) (*Dashboard, error) {
	festivals, err := s.festivals.OnDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("fetching festivals: %w", err)
	}

	var (
		snapshot *weather.Snapshot
		all      []holiday.Holiday
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if snapshot, err = s.weather.GetCurrentWeather(gctx, loc.Lat, loc.Lon); err != nil {
			return fmt.Errorf("fetching weather: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if all, err = s.holidays.GetPublicHolidays(gctx, date.Year); err != nil {
			return fmt.Errorf("fetching holidays: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).
			Str("location", locationName).
			Str("date", date.String()).
			Msg("dashboard generation failed")
		return nil, err
	}

	suggestions := s.engine.Evaluate(Context{
		Weather:         snapshot,
		Holiday:         holiday.FirstOn(all, date),
		Festival:        first(festivals),
		CrowdPrediction: DefaultCrowdPrediction,
	})

	return &Dashboard{
		Location:    locationName,
		Date:        date,
		Weather:     snapshot,
		Holidays:    holiday.On(all, date),
		Festivals:   festivals,
		Suggestions: suggestions,
	}, nil
}

func first(festivals []*festival.Festival) *festival.Festival {
	if len(festivals) == 0 {
		return nil
	}
	return festivals[0]
}
