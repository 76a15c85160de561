package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"junkmart/web/internal/apiclient"
	"junkmart/web/internal/cache"
	"junkmart/web/internal/clients"
	"junkmart/web/internal/config"
	"junkmart/web/internal/database"
	"junkmart/web/internal/handlers"
	"junkmart/web/internal/jobs"
	"junkmart/web/internal/log"
	"junkmart/web/internal/server"
	"junkmart/web/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	var (
		redisClient *redis.Client
		dbPool      *pgxpool.Pool
		store       storage.Store
		checks      []handlers.HealthCheck
	)

	switch cfg.Storage.Driver {
	case "redis":
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		store, err = storage.Open(ctx, cfg.Storage, redisClient, nil)
		checks = append(checks, handlers.HealthCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error { return cache.Ping(ctx, redisClient) },
		})
	case "postgres":
		dbPool, err = database.NewPostgresPool(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect postgres")
		}
		store, err = storage.Open(ctx, cfg.Storage, nil, dbPool)
		checks = append(checks, handlers.HealthCheck{Name: "postgres", Ping: dbPool.Ping})
	default:
		store, err = storage.Open(ctx, cfg.Storage, nil, nil)
	}
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to open client storage")
	}

	api := apiclient.New(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	registry := clients.NewRegistry(store, api, cfg.Polling.DedupeInterval, logger)

	handlerSet := handlers.NewHandlerSet(logger, cfg, registry, checks...)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(registry, cfg.Polling, cfg.Client.IdleTimeout, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	scheduler.Stop()

	if db != nil {
		db.Close()
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
}
