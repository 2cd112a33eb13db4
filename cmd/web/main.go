package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/majorcatalog/internal/catalog"
	"github.com/stemsi/majorcatalog/internal/config"
	"github.com/stemsi/majorcatalog/internal/database"
	"github.com/stemsi/majorcatalog/internal/diagnostic"
	"github.com/stemsi/majorcatalog/internal/handler"
	"github.com/stemsi/majorcatalog/internal/logger"
	"github.com/stemsi/majorcatalog/internal/router"
	"github.com/stemsi/majorcatalog/internal/service"
	"github.com/stemsi/majorcatalog/internal/view"
)

const viewerSweepInterval = time.Minute

func main() {
	cfg := config.Load()

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.WebPort).
		Str("catalog", cfg.CatalogBaseURL()).
		Str("mode", cfg.GinMode).
		Msg("Starting major detail site")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ─── Load records go to Redis when configured ──────────────────────
	var recorder diagnostic.Recorder = diagnostic.NewLogRecorder(log)
	checks := map[string]handler.Pinger{}
	rdb, err := database.NewRedisClient(ctx, cfg.RedisURL, log)
	switch {
	case errors.Is(err, database.ErrRedisNotConfigured):
		log.Info().Msg("REDIS_URL not set, load records are only logged")
	case err != nil:
		log.Warn().Err(err).Msg("Redis unavailable, load records are only logged")
	default:
		defer rdb.Close()
		recorder = diagnostic.NewRedisRecorder(rdb, log)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	client := catalog.NewClient(catalog.Options{
		BaseURL: cfg.CatalogBaseURL(),
		Timeout: cfg.CatalogTimeout,
	})
	detailService := service.NewDetailService(client, log)

	registry := view.NewRegistry(detailService, recorder, view.Options{
		LoadTimeout: cfg.LoadTimeout,
		TTL:         cfg.ViewerTTL,
	}, log)
	go registry.Run(ctx, viewerSweepInterval)

	r := router.SetupWebRouter(&router.WebHandlers{
		Detail: handler.NewDetailHandler(registry, cfg.RenderWait, log),
		Health: handler.NewHealthHandler(checks, log),
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.WebPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down gracefully...")

	// Closing the registry ends open event streams.
	registry.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
