package holiday

import (
	"context"
	"fmt"
	"slices"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/lankatrip/festweather/internal/cache"
	"github.com/lankatrip/festweather/internal/telemetry"
)

// Provider fetches the full holiday list for a country and year.
type Provider interface {
	GetHolidays(ctx context.Context, country string, year int) ([]Holiday, error)
	Name() string
}

// ServiceConfig holds configuration for the holiday service.
type ServiceConfig struct {
	// Provider is the upstream holiday calendar.
	Provider Provider

	// Cache stores per-year holiday lists. Defaults to an in-process store.
	Cache cache.Store

	// Logger for service operations.
	Logger zerolog.Logger

	// Country is the ISO country code (default: "LK").
	Country string

	// CacheTTL is how long a year's list is cached (default: 24 hours).
	CacheTTL time.Duration

	// CrossYearUpcoming makes GetUpcomingHolidays also read next year's
	// list when the window crosses December 31.
	CrossYearUpcoming bool

	// Now overrides the clock, for tests.
	Now func() time.Time

	// Metrics records cache and upstream outcomes (optional).
	Metrics *telemetry.ProviderMetrics
}

// Service provides holiday data backed by a shared cache.
type Service struct {
	provider          Provider
	cache             cache.Store
	logger            zerolog.Logger
	country           string
	cacheTTL          time.Duration
	crossYearUpcoming bool
	now               func() time.Time
	metrics           *telemetry.ProviderMetrics
}

// NewService creates a new holiday service.
func NewService(cfg ServiceConfig) *Service {
	country := cfg.Country
	if country == "" {
		country = "LK"
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	store := cfg.Cache
	if store == nil {
		store = cache.NewMemoryStore(cache.MemoryConfig{})
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		provider:          cfg.Provider,
		cache:             store,
		logger:            cfg.Logger,
		country:           country,
		cacheTTL:          cacheTTL,
		crossYearUpcoming: cfg.CrossYearUpcoming,
		now:               now,
		metrics:           cfg.Metrics,
	}
}

// Today returns the current calendar date according to the service clock.
func (s *Service) Today() civil.Date {
	return civil.DateOf(s.now())
}

// ProviderName returns the name of the underlying provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// GetPublicHolidays returns every holiday of the given year in provider order.
// A year of zero means the current year.
func (s *Service) GetPublicHolidays(ctx context.Context, year int) ([]Holiday, error) {
	if year == 0 {
		year = s.Today().Year
	}

	key := fmt.Sprintf("holidays:%s:%d", s.country, year)

	var cached []Holiday
	if err := cache.GetJSON(ctx, s.cache, key, &cached); err == nil {
		s.metrics.RecordCacheHit(ctx, s.provider.Name(), "holidays")
		return cached, nil
	}
	s.metrics.RecordCacheMiss(ctx, s.provider.Name(), "holidays")

	s.logger.Debug().
		Int("year", year).
		Str("country", s.country).
		Str("provider", s.provider.Name()).
		Msg("fetching holidays from provider")

	start := time.Now()
	holidays, err := s.provider.GetHolidays(ctx, s.country, year)
	s.metrics.RecordRequest(ctx, s.provider.Name(), "holidays", time.Since(start), err)
	if err != nil {
		s.logger.Error().Err(err).Int("year", year).Msg("failed to fetch holidays")
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	if holidays == nil {
		holidays = []Holiday{}
	}

	if err := cache.SetJSON(ctx, s.cache, key, holidays, s.cacheTTL); err != nil && !cache.IsMiss(err) {
		s.logger.Debug().Err(err).Str("key", key).Msg("failed to cache holidays")
	}

	s.logger.Info().Int("year", year).Int("count", len(holidays)).Msg("fetched holidays")
	return holidays, nil
}

// CheckIfHoliday returns the first holiday falling on date, or nil.
func (s *Service) CheckIfHoliday(ctx context.Context, date civil.Date) (*Holiday, error) {
	holidays, err := s.GetPublicHolidays(ctx, date.Year)
	if err != nil {
		return nil, err
	}

	if h := FirstOn(holidays, date); h != nil {
		s.logger.Debug().Str("date", date.String()).Str("holiday", h.Name).Msg("date is a holiday")
		return h, nil
	}
	return nil, nil
}

// GetUpcomingHolidays returns holidays whose date is between today and
// today+days inclusive, sorted by date, with DaysUntil set.
//
// Only the current year's list is consulted unless CrossYearUpcoming is set.
func (s *Service) GetUpcomingHolidays(ctx context.Context, days int) ([]Holiday, error) {
	today := s.Today()

	holidays, err := s.GetPublicHolidays(ctx, today.Year)
	if err != nil {
		return nil, err
	}

	if s.crossYearUpcoming && today.AddDays(days).Year > today.Year {
		next, err := s.GetPublicHolidays(ctx, today.Year+1)
		if err != nil {
			return nil, err
		}
		holidays = append(slices.Clip(holidays), next...)
	}

	upcoming := make([]Holiday, 0)
	for _, h := range holidays {
		daysUntil := h.Date.DaysSince(today)
		if daysUntil < 0 || daysUntil > days {
			continue
		}
		h.DaysUntil = &daysUntil
		upcoming = append(upcoming, h)
	}

	slices.SortStableFunc(upcoming, func(a, b Holiday) int {
		switch {
		case a.Date.Before(b.Date):
			return -1
		case a.Date.After(b.Date):
			return 1
		default:
			return 0
		}
	})

	return upcoming, nil
}

// FirstOn returns the first holiday in holidays dated date, or nil.
func FirstOn(holidays []Holiday, date civil.Date) *Holiday {
	for i := range holidays {
		if holidays[i].Date == date {
			h := holidays[i]
			return &h
		}
	}
	return nil
}

// On returns every holiday in holidays dated date, in order.
func On(holidays []Holiday, date civil.Date) []Holiday {
	out := make([]Holiday, 0)
	for _, h := range holidays {
		if h.Date == date {
			out = append(out, h)
		}
	}
	return out
}
