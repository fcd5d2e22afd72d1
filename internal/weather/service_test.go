package weather_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lankatrip/festweather/internal/cache"
	"github.com/lankatrip/festweather/internal/weather"
)

// mockProvider is a mock weather provider for testing.
type mockProvider struct {
	mu            sync.Mutex
	currentCalls  int
	forecastCalls int
	err           error
	alertsErr     error
	temperature   float64
}

func (m *mockProvider) Name() string {
	return "mock"
}

func (m *mockProvider) GetCurrentWeather(_ context.Context, _, _ float64) (*weather.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentCalls++

	if m.err != nil {
		return nil, m.err
	}

	return &weather.Snapshot{
		Location:    "Kandy",
		Temperature: m.temperature,
		FeelsLike:   m.temperature + 2,
		Condition:   weather.ConditionClear,
		Description: "clear sky",
		Humidity:    70,
		Pressure:    1010,
		WindSpeed:   3.1,
		Icon:        "01d",
		Timestamp:   time.Date(2026, 7, 25, 9, 0, 0, 0, time.UTC),
	}, nil
}

func (m *mockProvider) GetForecast(_ context.Context, _, _ float64) ([]weather.ForecastPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forecastCalls++

	if m.err != nil {
		return nil, m.err
	}

	return []weather.ForecastPoint{
		{DateTime: "2026-07-25 12:00:00", Temperature: 29.5, Condition: weather.ConditionRain, Rainfall: 4.2, Humidity: 80, Icon: "10d"},
		{DateTime: "2026-07-25 15:00:00", Temperature: 28.1, Condition: weather.ConditionClouds, Humidity: 78, Icon: "04d"},
	}, nil
}

func (m *mockProvider) GetAlerts(_ context.Context, _, _ float64) ([]weather.Alert, error) {
	if m.alertsErr != nil {
		return nil, m.alertsErr
	}
	return []weather.Alert{{Event: "Heavy Rain", Start: 1784966400, End: 1784995200, Sender: "Department of Meteorology"}}, nil
}

func (m *mockProvider) calls() (current, forecast int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentCalls, m.forecastCalls
}

func newService(provider weather.Provider, store cache.Store) *weather.Service {
	return weather.NewService(weather.ServiceConfig{
		Provider: provider,
		Cache:    store,
		Logger:   zerolog.Nop(),
	})
}

func TestService_GetCurrentWeather(t *testing.T) {
	provider := &mockProvider{temperature: 28.5}
	svc := newService(provider, nil)

	snapshot, err := svc.GetCurrentWeather(context.Background(), 7.2906, 80.6337)
	require.NoError(t, err)
	require.NotNil(t, snapshot)

	assert.Equal(t, "Kandy", snapshot.Location)
	assert.Equal(t, 28.5, snapshot.Temperature)
	assert.Equal(t, weather.ConditionClear, snapshot.Condition)
}

func TestService_GetCurrentWeather_Caching(t *testing.T) {
	provider := &mockProvider{temperature: 28.5}
	svc := newService(provider, nil)
	ctx := context.Background()

	_, err := svc.GetCurrentWeather(ctx, 7.2906, 80.6337)
	require.NoError(t, err)

	provider.temperature = 40
	snapshot, err := svc.GetCurrentWeather(ctx, 7.2906, 80.6337)
	require.NoError(t, err)

	current, _ := provider.calls()
	assert.Equal(t, 1, current, "second call should be served from cache")
	assert.Equal(t, 28.5, snapshot.Temperature)

	_, err = svc.GetCurrentWeather(ctx, 6.9271, 79.8612)
	require.NoError(t, err)
	current, _ = provider.calls()
	assert.Equal(t, 2, current, "different coordinates should miss")
}

func TestService_GetCurrentWeather_CacheKeyAndTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	store := cache.NewRedisStore(cache.RedisConfig{URL: "redis://" + mr.Addr(), Logger: zerolog.Nop()})
	t.Cleanup(func() { _ = store.Close() })

	provider := &mockProvider{temperature: 30}
	svc := newService(provider, store)

	_, err := svc.GetCurrentWeather(context.Background(), 6.9271, 79.8612)
	require.NoError(t, err)

	assert.True(t, mr.Exists("weather:current:6.9271:79.8612"))
	assert.Equal(t, time.Hour, mr.TTL("weather:current:6.9271:79.8612"))

	_, err = svc.GetForecast(context.Background(), 6.9271, 79.8612)
	require.NoError(t, err)
	assert.True(t, mr.Exists("weather:forecast:6.9271:79.8612"))
}

func TestService_GetCurrentWeather_CoordinateRounding(t *testing.T) {
	provider := &mockProvider{temperature: 30}
	svc := weather.NewService(weather.ServiceConfig{
		Provider:           provider,
		Logger:             zerolog.Nop(),
		CoordinateDecimals: 2,
	})
	ctx := context.Background()

	_, err := svc.GetCurrentWeather(ctx, 6.92711, 79.86124)
	require.NoError(t, err)
	_, err = svc.GetCurrentWeather(ctx, 6.92704, 79.86118)
	require.NoError(t, err)

	current, _ := provider.calls()
	assert.Equal(t, 1, current, "nearby points should share a cache entry")
}

func TestService_GetCurrentWeather_InvalidCoordinates(t *testing.T) {
	provider := &mockProvider{}
	svc := newService(provider, nil)

	tests := []struct {
		name string
		lat  float64
		lon  float64
	}{
		{"lat too high", 91, 80},
		{"lat too low", -91, 80},
		{"lon too high", 7, 181},
		{"lon too low", 7, -181},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetCurrentWeather(context.Background(), tt.lat, tt.lon)
			assert.ErrorIs(t, err, weather.ErrInvalidCoordinates)
		})
	}

	current, _ := provider.calls()
	assert.Zero(t, current)
}

func TestService_GetCurrentWeather_ProviderErrorNotCached(t *testing.T) {
	provider := &mockProvider{err: errors.New("connection refused")}
	svc := newService(provider, nil)
	ctx := context.Background()

	_, err := svc.GetCurrentWeather(ctx, 7.2906, 80.6337)
	assert.ErrorIs(t, err, weather.ErrProviderUnavailable)

	provider.err = nil
	provider.temperature = 27
	snapshot, err := svc.GetCurrentWeather(ctx, 7.2906, 80.6337)
	require.NoError(t, err)
	assert.Equal(t, 27.0, snapshot.Temperature)

	current, _ := provider.calls()
	assert.Equal(t, 2, current, "failure must not be cached")
}

func TestService_GetCurrentWeather_DisabledCacheStillServes(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	addr := mr.Addr()
	mr.Close()

	store := cache.NewRedisStore(cache.RedisConfig{
		URL:         "redis://" + addr,
		DialTimeout: 100 * time.Millisecond,
		Logger:      zerolog.Nop(),
	})
	provider := &mockProvider{temperature: 31}
	svc := newService(provider, store)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		snapshot, err := svc.GetCurrentWeather(ctx, 7.2906, 80.6337)
		require.NoError(t, err)
		assert.Equal(t, 31.0, snapshot.Temperature)
	}

	current, _ := provider.calls()
	assert.Equal(t, 2, current)
}

func TestService_GetForecast(t *testing.T) {
	provider := &mockProvider{}
	svc := newService(provider, nil)
	ctx := context.Background()

	forecast, err := svc.GetForecast(ctx, 7.2906, 80.6337)
	require.NoError(t, err)
	require.Len(t, forecast, 2)
	assert.Equal(t, "2026-07-25 12:00:00", forecast[0].DateTime)
	assert.Equal(t, 4.2, forecast[0].Rainfall)

	_, err = svc.GetForecast(ctx, 7.2906, 80.6337)
	require.NoError(t, err)

	_, forecastCalls := provider.calls()
	assert.Equal(t, 1, forecastCalls)
}

func TestService_GetForecast_ProviderError(t *testing.T) {
	svc := newService(&mockProvider{err: errors.New("timeout")}, nil)

	_, err := svc.GetForecast(context.Background(), 7.2906, 80.6337)
	assert.ErrorIs(t, err, weather.ErrProviderUnavailable)
}

func TestService_GetAlerts(t *testing.T) {
	svc := newService(&mockProvider{}, nil)

	alerts, err := svc.GetAlerts(context.Background(), 7.2906, 80.6337)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Heavy Rain", alerts[0].Event)
}

func TestService_GetAlerts_FailureYieldsEmpty(t *testing.T) {
	svc := newService(&mockProvider{alertsErr: errors.New("401 unauthorized")}, nil)

	alerts, err := svc.GetAlerts(context.Background(), 7.2906, 80.6337)
	require.NoError(t, err)
	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)
}

func TestCondition_IsWet(t *testing.T) {
	assert.True(t, weather.ConditionRain.IsWet())
	assert.True(t, weather.ConditionThunderstorm.IsWet())
	assert.False(t, weather.ConditionClear.IsWet())
	assert.False(t, weather.ConditionClouds.IsWet())
}
