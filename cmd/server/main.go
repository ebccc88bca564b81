package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"admindash/internal/app"
	"admindash/internal/cache"
	"admindash/internal/config"
	"admindash/internal/logging"
)

// @title Admin Dashboard API
// @version 1.0
// @description Admin dashboard backend with cookie-based session authentication and product management.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey CookieAuth
// @in header
// @name Cookie
// @description Session cookie set by /auth/login or /auth/register.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.NewJSON(!cfg.IsProduction())
	ctx := context.Background()

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	stores, err := app.OpenStores(startCtx, cfg, logger)
	cancel()
	if err != nil {
		logger.Error(ctx, "storage init failed", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}

	var cacheClient *cache.Client
	if cfg.RedisAddr != "" {
		cacheClient = cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := cacheClient.Ping(pingCtx); err != nil {
			logger.Warn(ctx, "redis unreachable; continuing without cache hits", "addr", cfg.RedisAddr, "error", err)
		}
		cancel()
	}

	a, err := app.New(cfg, logger, stores, cacheClient)
	if err != nil {
		logger.Error(ctx, "app init failed", "error", err)
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info(ctx, "shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			logger.Error(ctx, "server error", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := a.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "shutdown", "error", err)
		os.Exit(1)
	}
}
