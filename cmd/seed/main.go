// Package main seeds the festival store with the Sri Lankan catalogue.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/lankatrip/festweather/internal/app"
	"github.com/lankatrip/festweather/internal/config"
	"github.com/lankatrip/festweather/internal/festival"
)

func main() {
	store := flag.String("store", "", "Festival store to seed (postgres, sqlite, memory); defaults to FESTIVAL_STORE")
	timeout := flag.Duration("timeout", time.Minute, "Overall timeout")
	flag.Parse()

	log := app.NewLogger("festweather-seed", "dev")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	log = log.Level(cfg.LogLevel)
	if *store != "" {
		cfg.FestivalStore = *store
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	repo, closeRepo, err := app.OpenFestivalRepository(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.FestivalStore).Msg("failed to open festival store")
	}
	defer closeRepo()

	svc := festival.NewService(festival.ServiceConfig{
		Repository: repo,
		Logger:     log,
	})

	n, err := svc.Seed(ctx, festival.SriLankaCatalogue())
	if err != nil {
		log.Error().Err(err).Int("created", n).Msg("seeding failed")
		closeRepo()
		os.Exit(1) //nolint:gocritic // store already closed above
	}

	log.Info().Str("store", cfg.FestivalStore).Int("created", n).Msg("seed complete")
}
