package main

import (
	"context"
	"flag"
	"time"

	"github.com/catalogomaker/backend/internal/config"
	"github.com/catalogomaker/backend/internal/db"
	"github.com/catalogomaker/backend/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up|down")
	flag.Parse()

	logger := logger.New()

	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Error loading config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.Open(ctx, cfg.DBConnectionString, cfg.Environment, logger)
	if err != nil {
		logger.Fatal().Msgf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(pool, *direction, logger); err != nil {
		logger.Fatal().Msgf("Migration failed: %v", err)
	}
}
