package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/climate-surrogate/internal/adapter/http"
	"github.com/couchcryptid/climate-surrogate/internal/config"
	"github.com/couchcryptid/climate-surrogate/internal/observability"
	"github.com/couchcryptid/climate-surrogate/internal/surrogate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	store := surrogate.NewFileStore(cfg.ModelDir)
	registry := surrogate.NewRegistry(store, cfg.ModelDomains, cfg.PredictionCacheSize, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A missing artifact is not fatal: the domain stays unavailable and
	// /readyz reports it until the process is restarted with the model present.
	if cfg.ModelPreload {
		if err := registry.Preload(ctx); err != nil {
			logger.Warn("some models unavailable", "error", err)
		}
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, registry, registry, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	logger.Info("surrogate service started",
		"model_dir", cfg.ModelDir,
		"domains", cfg.ModelDomains,
		"prediction_cache_size", cfg.PredictionCacheSize,
	)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
