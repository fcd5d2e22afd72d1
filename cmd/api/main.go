// Package main runs the festweather HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/lankatrip/festweather/internal/api"
	"github.com/lankatrip/festweather/internal/api/middleware"
	"github.com/lankatrip/festweather/internal/app"
	"github.com/lankatrip/festweather/internal/auth"
	"github.com/lankatrip/festweather/internal/config"
	"github.com/lankatrip/festweather/internal/festival"
	"github.com/lankatrip/festweather/internal/suggestion"
	"github.com/lankatrip/festweather/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const (
	serviceName     = "festweather-api"
	shutdownTimeout = 30 * time.Second
)

func main() {
	log := app.NewLogger(serviceName, Version)
	log.Info().Str("build_time", BuildTime).Msg("starting festweather API")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	log = log.Level(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("api exited")
		stop()
		os.Exit(1) //nolint:gocritic // deferred cleanup already ran inside run
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	tp, err := app.InitTelemetry(ctx, cfg, serviceName, Version)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(flushCtx); err != nil {
			log.Error().Err(err).Msg("failed to flush telemetry")
		}
	}()
	if cfg.OTELEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Float64("sample_ratio", cfg.OTELSampleRatio).
			Msg("OpenTelemetry initialized")
	}

	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		return fmt.Errorf("http metrics: %w", err)
	}
	providerMetrics, err := telemetry.NewProviderMetrics()
	if err != nil {
		return fmt.Errorf("provider metrics: %w", err)
	}

	store := app.NewCache(ctx, cfg, log)
	defer func() { _ = store.Close() }()

	upstream := app.NewUpstream(cfg, store, providerMetrics, log)

	repo, closeRepo, err := app.OpenFestivalRepository(ctx, cfg)
	if err != nil {
		return fmt.Errorf("festival store %q: %w", cfg.FestivalStore, err)
	}
	defer closeRepo()
	log.Info().Str("store", cfg.FestivalStore).Msg("festival store opened")

	festivals := festival.NewService(festival.ServiceConfig{Repository: repo, Logger: log})
	suggestions := suggestion.NewService(suggestion.ServiceConfig{
		Weather:   upstream.Weather,
		Holidays:  upstream.Holidays,
		Festivals: festivals,
		Logger:    log,
	})

	var adminTokens middleware.TokenValidator
	if cfg.AdminJWTSecret != "" {
		adminTokens = auth.NewJWTService(auth.JWTConfig{SigningKey: cfg.AdminJWTSecret})
	} else {
		log.Warn().Msg("ADMIN_JWT_SECRET not set - festival writes are disabled")
	}

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: api.NewRouter(api.RouterConfig{
			Version:           Version,
			Logger:            log,
			ServiceName:       serviceName,
			Metrics:           httpMetrics,
			WeatherService:    upstream.Weather,
			HolidayService:    upstream.Holidays,
			FestivalService:   festivals,
			SuggestionService: suggestions,
			Cache:             store,
			Registry:          upstream.Registry,
			AdminTokens:       adminTokens,
			PublicRateLimit:   cfg.PublicRateLimit,
			AdminRateLimit:    cfg.AdminRateLimit,
			RequireTLS:        cfg.RequireTLS,
			PublicMaxAge:      cfg.PublicMaxAge,
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
