// Package main mints an admin bearer token signed with ADMIN_JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/lankatrip/festweather/internal/auth"
	"github.com/lankatrip/festweather/internal/config"
)

func main() {
	subject := flag.String("subject", "", "Admin identity recorded in the token (required)")
	ttl := flag.Duration("ttl", auth.DefaultTokenExpiry, "Token lifetime")
	flag.Parse()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if *subject == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.AdminJWTSecret == "" {
		log.Fatal().Msg("ADMIN_JWT_SECRET is not set")
	}

	svc := auth.NewJWTService(auth.JWTConfig{SigningKey: cfg.AdminJWTSecret})
	token, expiresAt, err := svc.GenerateAdminToken(*subject, *ttl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to sign token")
	}

	log.Info().
		Str("subject", *subject).
		Time("expires_at", expiresAt).
		Msg("admin token issued")
	fmt.Println(token)
}
