// Package main runs the festweather cache warm-up worker. It consumes
// Pub/Sub jobs when GCP_PROJECT_ID is set and otherwise warms on a timer.
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

	"github.com/lankatrip/festweather/internal/app"
	"github.com/lankatrip/festweather/internal/config"
	"github.com/lankatrip/festweather/internal/telemetry"
	"github.com/lankatrip/festweather/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const serviceName = "festweather-worker"

func main() {
	log := app.NewLogger(serviceName, Version)
	log.Info().Str("build_time", BuildTime).Msg("starting festweather worker")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	log = log.Level(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("worker exited")
		stop()
		os.Exit(1) //nolint:gocritic // deferred cleanup already ran inside run
	}
	log.Info().Msg("worker stopped")
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

	providerMetrics, err := telemetry.NewProviderMetrics()
	if err != nil {
		return fmt.Errorf("provider metrics: %w", err)
	}

	store := app.NewCache(ctx, cfg, log)
	defer func() { _ = store.Close() }()

	upstream := app.NewUpstream(cfg, store, providerMetrics, log)

	warmup := worker.NewWarmupJob(worker.WarmupJobConfig{
		Config:   worker.DefaultWarmupConfig(),
		Logger:   log,
		Weather:  upstream.Weather,
		Holidays: upstream.Holidays,
	})

	// Cloud Run needs a listening port even for background workers.
	health := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      healthHandler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	go func() {
		log.Info().Str("addr", health.Addr).Msg("health check server listening")
		if err := health.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server error")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := health.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("health server forced to shutdown")
		}
	}()

	if cfg.GCPProjectID == "" {
		log.Warn().
			Dur("interval", cfg.WeatherCacheTTL).
			Msg("GCP_PROJECT_ID not set - warming caches on a timer")
		runPeriodically(ctx, warmup, cfg.WeatherCacheTTL)
		return nil
	}

	handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
		ProjectID:        cfg.GCPProjectID,
		SubscriptionName: cfg.PubSubSubscription,
		WarmupJob:        warmup,
		Logger:           log,
	})
	if err != nil {
		return fmt.Errorf("pubsub handler: %w", err)
	}
	defer func() { _ = handler.Close() }()

	if err := handler.Start(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("pubsub receive: %w", err)
	}
	return nil
}

func healthHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":%q}`, Version)
	})
	return mux
}

// runPeriodically warms the caches once and then every interval until ctx
// is cancelled.
func runPeriodically(ctx context.Context, job *worker.WarmupJob, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	job.Run(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job.Run(ctx)
		}
	}
}
