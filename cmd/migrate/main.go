package main

import (
	"context"
	"flag"
	"time"

	"github.com/rs/zerolog/log"

	"whatsapp_reviews/internal/adapters/observability"
	"whatsapp_reviews/internal/shared"
	"whatsapp_reviews/internal/storage"
)

func main() {
	envFile := flag.String("env", "", "path to .env file (default .env when present)")
	timeout := flag.Duration("timeout", 30*time.Second, "overall deadline")
	flag.Parse()

	cfg, err := shared.Load(*envFile)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store, db, err := storage.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("database connection failed")
	}
	defer db.Close()
	log.Info().Str("driver", cfg.DBDriver).Msg("db ping ok")

	if err := store.EnsureSchema(ctx); err != nil {
		log.Error().Err(err).Msg("schema bootstrap failed")
		return
	}
	log.Info().Msg("reviews table ready")
}
