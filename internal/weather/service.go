package weather

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/lankatrip/festweather/internal/cache"
	"github.com/lankatrip/festweather/internal/telemetry"
)

// Provider defines the interface for weather data providers.
type Provider interface {
	// GetCurrentWeather fetches current weather for a location.
	GetCurrentWeather(ctx context.Context, lat, lon float64) (*Snapshot, error)

	// GetForecast fetches the multi-day forecast for a location.
	GetForecast(ctx context.Context, lat, lon float64) ([]ForecastPoint, error)

	// GetAlerts fetches active weather alerts for a location.
	GetAlerts(ctx context.Context, lat, lon float64) ([]Alert, error)

	// Name returns the provider name for logging.
	Name() string
}

// ServiceConfig holds configuration for the weather service.
type ServiceConfig struct {
	// Provider is the weather data provider.
	Provider Provider

	// Cache stores current and forecast responses. Defaults to an
	// in-process store.
	Cache cache.Store

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long current weather is cached (default: 1 hour).
	CacheTTL time.Duration

	// ForecastTTL is how long forecasts are cached (default: CacheTTL).
	ForecastTTL time.Duration

	// CoordinateDecimals rounds coordinates in cache keys. Zero keeps the
	// coordinates exactly as requested.
	CoordinateDecimals int

	// Metrics records cache and upstream outcomes (optional).
	Metrics *telemetry.ProviderMetrics
}

// Service provides weather data backed by a shared cache.
type Service struct {
	provider           Provider
	cache              cache.Store
	logger             zerolog.Logger
	cacheTTL           time.Duration
	forecastTTL        time.Duration
	coordinateDecimals int
	metrics            *telemetry.ProviderMetrics
}

// NewService creates a new weather service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}

	forecastTTL := cfg.ForecastTTL
	if forecastTTL == 0 {
		forecastTTL = cacheTTL
	}

	store := cfg.Cache
	if store == nil {
		store = cache.NewMemoryStore(cache.MemoryConfig{})
	}

	return &Service{
		provider:           cfg.Provider,
		cache:              store,
		logger:             cfg.Logger,
		cacheTTL:           cacheTTL,
		forecastTTL:        forecastTTL,
		coordinateDecimals: cfg.CoordinateDecimals,
		metrics:            cfg.Metrics,
	}
}

// ProviderName returns the name of the underlying provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// GetCurrentWeather returns current weather for a location.
// A cached value younger than the TTL is returned without an upstream call.
// Upstream failures are returned as ErrProviderUnavailable and never cached.
func (s *Service) GetCurrentWeather(ctx context.Context, lat, lon float64) (*Snapshot, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	key := s.cacheKey("current", lat, lon)

	var cached Snapshot
	if err := cache.GetJSON(ctx, s.cache, key, &cached); err == nil {
		s.metrics.RecordCacheHit(ctx, s.provider.Name(), "current")
		return &cached, nil
	}
	s.metrics.RecordCacheMiss(ctx, s.provider.Name(), "current")

	s.logger.Debug().
		Float64("lat", lat).
		Float64("lon", lon).
		Str("provider", s.provider.Name()).
		Msg("fetching weather from provider")

	start := time.Now()
	snapshot, err := s.provider.GetCurrentWeather(ctx, lat, lon)
	s.metrics.RecordRequest(ctx, s.provider.Name(), "current", time.Since(start), err)
	if err != nil {
		s.logger.Error().Err(err).
			Float64("lat", lat).
			Float64("lon", lon).
			Msg("failed to fetch weather")
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	s.store(ctx, key, snapshot, s.cacheTTL)
	return snapshot, nil
}

// GetForecast returns the forecast for a location, cached like current weather.
func (s *Service) GetForecast(ctx context.Context, lat, lon float64) ([]ForecastPoint, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	key := s.cacheKey("forecast", lat, lon)

	var cached []ForecastPoint
	if err := cache.GetJSON(ctx, s.cache, key, &cached); err == nil {
		s.metrics.RecordCacheHit(ctx, s.provider.Name(), "forecast")
		return cached, nil
	}
	s.metrics.RecordCacheMiss(ctx, s.provider.Name(), "forecast")

	start := time.Now()
	forecast, err := s.provider.GetForecast(ctx, lat, lon)
	s.metrics.RecordRequest(ctx, s.provider.Name(), "forecast", time.Since(start), err)
	if err != nil {
		s.logger.Error().Err(err).
			Float64("lat", lat).
			Float64("lon", lon).
			Msg("failed to fetch forecast")
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	if forecast == nil {
		forecast = []ForecastPoint{}
	}

	s.store(ctx, key, forecast, s.forecastTTL)
	return forecast, nil
}

// GetAlerts returns active weather alerts for a location.
// Alerts are best-effort: upstream failures yield an empty list.
func (s *Service) GetAlerts(ctx context.Context, lat, lon float64) ([]Alert, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	start := time.Now()
	alerts, err := s.provider.GetAlerts(ctx, lat, lon)
	s.metrics.RecordRequest(ctx, s.provider.Name(), "alerts", time.Since(start), err)
	if err != nil {
		s.logger.Warn().Err(err).
			Float64("lat", lat).
			Float64("lon", lon).
			Msg("failed to fetch weather alerts")
		return []Alert{}, nil
	}

	if alerts == nil {
		alerts = []Alert{}
	}
	return alerts, nil
}

func (s *Service) store(ctx context.Context, key string, v any, ttl time.Duration) {
	if err := cache.SetJSON(ctx, s.cache, key, v, ttl); err != nil && !cache.IsMiss(err) {
		s.logger.Debug().Err(err).Str("key", key).Msg("failed to cache weather")
	}
}

// cacheKey builds "weather:<kind>:<lat>:<lon>".
func (s *Service) cacheKey(kind string, lat, lon float64) string {
	return "weather:" + kind + ":" + s.formatCoordinate(lat) + ":" + s.formatCoordinate(lon)
}

func (s *Service) formatCoordinate(v float64) string {
	if s.coordinateDecimals > 0 {
		scale := math.Pow(10, float64(s.coordinateDecimals))
		v = math.Round(v*scale) / scale
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// validateCoordinates checks if coordinates are valid.
func validateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}
