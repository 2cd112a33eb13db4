package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/majorcatalog/internal/config"
	"github.com/stemsi/majorcatalog/internal/database"
	"github.com/stemsi/majorcatalog/internal/handler"
	"github.com/stemsi/majorcatalog/internal/logger"
	"github.com/stemsi/majorcatalog/internal/middleware"
	"github.com/stemsi/majorcatalog/internal/repository"
	"github.com/stemsi/majorcatalog/internal/router"
	"github.com/stemsi/majorcatalog/internal/service"
	"github.com/stemsi/majorcatalog/internal/validator"
	"github.com/stemsi/majorcatalog/internal/worker"
	"golang.org/x/sync/errgroup"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting major catalog")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis (optional) ───────────────────────────────────
	var rdb *redis.Client
	rdb, err = database.NewRedisClient(ctx, cfg.RedisURL, log)
	switch {
	case errors.Is(err, database.ErrRedisNotConfigured):
		log.Warn().Msg("REDIS_URL not set, load log worker disabled")
	case err != nil:
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	default:
		defer rdb.Close()
	}

	// ─── Repositories & Services ───────────────────────────────────────
	majorRepo := repository.NewMajorRepository(pool)
	loadLogRepo := repository.NewLoadLogRepository(pool)
	majorService := service.NewMajorService(majorRepo, log)

	checks := map[string]handler.Pinger{"postgres": pool.Ping}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	r := router.SetupCatalogRouter(&router.CatalogHandlers{
		Major:  handler.NewMajorHandler(majorService),
		Health: handler.NewHealthHandler(checks, log),
	}, limiter, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		limiter.Run(gCtx)
		return nil
	})

	// ─── Start Background Workers ──────────────────────────────────────
	if rdb != nil {
		loadLogWorker := worker.NewLoadLogWorker(rdb, loadLogRepo, cfg.LoadLogBatch, log)
		g.Go(func() error {
			loadLogWorker.Start(gCtx)
			return nil
		})
	}

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	g.Go(func() error {
		<-gCtx.Done()
		log.Info().Msg("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
	}
	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
