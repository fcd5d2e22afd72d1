// Package app builds the components shared by the festweather binaries
// from a loaded configuration.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/lankatrip/festweather/internal/cache"
	"github.com/lankatrip/festweather/internal/config"
	"github.com/lankatrip/festweather/internal/database"
	"github.com/lankatrip/festweather/internal/festival"
	"github.com/lankatrip/festweather/internal/holiday"
	"github.com/lankatrip/festweather/internal/holiday/calendarific"
	"github.com/lankatrip/festweather/internal/provider/resilience"
	"github.com/lankatrip/festweather/internal/telemetry"
	"github.com/lankatrip/festweather/internal/weather"
	"github.com/lankatrip/festweather/internal/weather/openweathermap"
)

// NewLogger returns the JSON logger every binary writes to stdout.
func NewLogger(service, version string) zerolog.Logger {
	return zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", service).
		Str("version", version).
		Logger()
}

// InitTelemetry installs the OTLP exporters described by cfg. The returned
// provider is never nil and must be shut down on exit.
func InitTelemetry(ctx context.Context, cfg config.Config, service, version string) (*telemetry.Provider, error) {
	return telemetry.Init(ctx, telemetry.Config{
		ServiceName:    service,
		ServiceVersion: version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTELEnabled,
		SampleRatio:    cfg.OTELSampleRatio,
	})
}

// NewCache returns a Redis store when cfg.RedisURL is set and an in-process
// store otherwise. A Redis store that cannot connect stays disabled; requests
// then go straight to the providers.
func NewCache(ctx context.Context, cfg config.Config, logger zerolog.Logger) cache.Store {
	if cfg.RedisURL == "" {
		logger.Info().Msg("REDIS_URL not set, using in-process cache")
		return cache.NewMemoryStore(cache.MemoryConfig{})
	}

	store := cache.NewRedisStore(cache.RedisConfig{
		URL:    cfg.RedisURL,
		Logger: logger,
	})
	if store.Connect(ctx) {
		logger.Info().Msg("connected to redis cache")
	}
	return store
}

// Upstream holds the provider-backed services and the registry tracking
// their circuit breakers.
type Upstream struct {
	Registry *resilience.Registry
	Weather  *weather.Service
	Holidays *holiday.Service
}

// NewUpstream wires the OpenWeatherMap and Calendarific clients behind the
// shared cache. metrics may be nil.
func NewUpstream(cfg config.Config, store cache.Store, metrics *telemetry.ProviderMetrics, logger zerolog.Logger) Upstream {
	registry := resilience.NewRegistry()

	weatherClient := openweathermap.NewClient(openweathermap.ClientConfig{
		APIKey:     cfg.OpenWeatherMapAPIKey,
		BaseURL:    cfg.OpenWeatherMapBaseURL,
		HTTPClient: upstreamClient(openweathermap.ProviderName, cfg, registry, logger),
		Logger:     logger.With().Str("provider", openweathermap.ProviderName).Logger(),
	})

	holidayClient := calendarific.NewClient(calendarific.ClientConfig{
		APIKey:     cfg.CalendarificAPIKey,
		BaseURL:    cfg.CalendarificBaseURL,
		HTTPClient: upstreamClient(calendarific.ProviderName, cfg, registry, logger),
		Logger:     logger.With().Str("provider", calendarific.ProviderName).Logger(),
	})

	return Upstream{
		Registry: registry,
		Weather: weather.NewService(weather.ServiceConfig{
			Provider:           weatherClient,
			Cache:              store,
			Logger:             logger,
			CacheTTL:           cfg.WeatherCacheTTL,
			CoordinateDecimals: cfg.CoordinateDecimals,
			Metrics:            metrics,
		}),
		Holidays: holiday.NewService(holiday.ServiceConfig{
			Provider:          holidayClient,
			Cache:             store,
			Logger:            logger,
			Country:           cfg.HolidayCountry,
			CacheTTL:          cfg.HolidayCacheTTL,
			CrossYearUpcoming: cfg.HolidayUpcomingCrossYear,
			Metrics:           metrics,
		}),
	}
}

func upstreamClient(name string, cfg config.Config, registry *resilience.Registry, logger zerolog.Logger) *resilience.Client {
	clientCfg := resilience.DefaultClientConfig(name)
	if cfg.UpstreamTimeout > 0 {
		clientCfg.Timeout = cfg.UpstreamTimeout
	}
	clientCfg.RequestsPerSecond = cfg.UpstreamRequestsPerSecond
	clientCfg.Burst = cfg.UpstreamBurst
	clientCfg.Registry = registry
	clientCfg.CircuitBreaker.OnStateChange = func(provider string, from, to gobreaker.State) {
		logger.Warn().
			Str("provider", provider).
			Str("from", from.String()).
			Str("to", to.String()).
			Msg("circuit breaker state changed")
	}
	return resilience.NewClient(clientCfg)
}

// OpenFestivalRepository opens the backend named by cfg.FestivalStore. The
// returned close function releases it and is never nil.
func OpenFestivalRepository(ctx context.Context, cfg config.Config) (festival.Repository, func(), error) {
	switch cfg.FestivalStore {
	case config.FestivalStoreMemory:
		return festival.NewInMemoryRepository(), func() {}, nil

	case config.FestivalStoreSQLite:
		repo, err := festival.OpenSQLiteRepository(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close() }, nil

	case config.FestivalStorePostgres, "":
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		repo := festival.NewPostgresRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown festival store %q", cfg.FestivalStore)
	}
}
