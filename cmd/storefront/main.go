package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/httpserver"
	"storefront/internal/logging"

	"go.uber.org/zap"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	repo, pool, err := app.OpenStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open client storage", zap.Error(err))
	}

	a := app.New(cfg, repo, logger)
	a.Pool = pool
	defer a.Close()
	a.Start(ctx)

	var db httpserver.Pinger
	if pool != nil {
		db = pool
	}
	srv, err := httpserver.New(cfg.HTTPAddr, logger.Named("http"), db, httpserver.Deps{
		Cart:          a.Cart,
		Coupons:       a.Coupons,
		Orders:        a.Orders,
		Settings:      a.Settings,
		Auth:          a.Auth,
		Notifications: a.Feed,
	}, cfg.AllowedOrigins)
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}
