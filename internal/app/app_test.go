package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lankatrip/festweather/internal/config"
	"github.com/lankatrip/festweather/internal/festival"
	"github.com/lankatrip/festweather/internal/holiday/calendarific"
	"github.com/lankatrip/festweather/internal/provider/resilience"
	"github.com/lankatrip/festweather/internal/weather/openweathermap"
)

func TestNewCache_MemoryWithoutRedisURL(t *testing.T) {
	store := NewCache(context.Background(), config.Config{}, zerolog.Nop())
	defer store.Close()

	assert.Equal(t, "memory", store.Name())
}

func TestNewCache_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	store := NewCache(context.Background(), config.Config{RedisURL: "redis://" + mr.Addr()}, zerolog.Nop())
	defer store.Close()

	assert.Equal(t, "redis", store.Name())
}

func TestNewUpstream_RegistersProviders(t *testing.T) {
	cfg := config.Config{UpstreamRequestsPerSecond: 5, UpstreamBurst: 2}

	up := NewUpstream(cfg, nil, nil, zerolog.Nop())
	require.NotNil(t, up.Weather)
	require.NotNil(t, up.Holidays)

	var names []string
	for _, h := range up.Registry.All() {
		names = append(names, h.Name)
	}
	assert.ElementsMatch(t, []string{openweathermap.ProviderName, calendarific.ProviderName}, names)
}

func TestOpenFestivalRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		repo, closeFn, err := OpenFestivalRepository(ctx, config.Config{FestivalStore: config.FestivalStoreMemory})
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &festival.InMemoryRepository{}, repo)
	})

	t.Run("sqlite", func(t *testing.T) {
		repo, closeFn, err := OpenFestivalRepository(ctx, config.Config{
			FestivalStore: config.FestivalStoreSQLite,
			SQLitePath:    ":memory:",
		})
		require.NoError(t, err)
		defer closeFn()

		f := &festival.Festival{Name: "Vesak", Location: "Nationwide", IsActive: true}
		require.NoError(t, repo.Create(ctx, f))
		assert.Equal(t, int64(1), f.ID)
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := OpenFestivalRepository(ctx, config.Config{FestivalStore: "mongo"})
		assert.ErrorContains(t, err, "mongo")
	})
}

func TestInitTelemetry_Disabled(t *testing.T) {
	tp, err := InitTelemetry(context.Background(), config.Config{Env: "test"}, "festweather-api", "dev")
	require.NoError(t, err)

	assert.Nil(t, tp.TracerProvider)
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestUpstreamClient_LogsBreakerTransitions(t *testing.T) {
	var buf bytes.Buffer
	registry := resilience.NewRegistry()
	client := upstreamClient("openweathermap", config.Config{}, registry, zerolog.New(&buf))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	for i := 0; i < 5; i++ {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, http.NoBody)
		require.NoError(t, err)
		if resp, err := client.Do(req); err == nil {
			resp.Body.Close()
		}
	}

	assert.Equal(t, resilience.ConditionUnavailable, registry.Health("openweathermap").Condition())
	assert.Contains(t, buf.String(), "circuit breaker state changed")
	assert.Contains(t, buf.String(), `"to":"open"`)
}
