package main

import (
	"context"
	"log"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/logging"
	"storefront/internal/migrate"

	"go.uber.org/zap"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if !cfg.UsesPostgres() {
		logger.Info("file storage needs no migrations", zap.String("path", cfg.StorageDSN))
		return
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.StorageDSN)
	if err != nil {
		logger.Fatal("connect storage", zap.Error(err))
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	logger.Info("migrations applied")
}
