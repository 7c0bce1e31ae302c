package main

import (
	"context"
	"log"

	"anoa.com/plantspeak/internal/bootstrap"
	"anoa.com/plantspeak/internal/config"
	"anoa.com/plantspeak/internal/server"
	"anoa.com/plantspeak/pkg/logger"
	"anoa.com/plantspeak/pkg/ratelimiter"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: "stdout"})
	defer func() { _ = appLogger.Sync() }()

	db, err := bootstrap.OpenDatabase(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("failed to open database", zap.Error(err))
	}

	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedDemoUser(db, appLogger); err != nil {
			appLogger.Fatal("failed to seed demo user", zap.Error(err))
		}
	}

	ctx := context.Background()

	redisClient, err := ratelimiter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		appLogger.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
		redisClient = nil
	}

	srv, err := server.NewServer(ctx, cfg, db, redisClient, appLogger)
	if err != nil {
		appLogger.Fatal("failed to build server", zap.Error(err))
	}

	if err := srv.Run(":" + cfg.Port); err != nil {
		appLogger.Fatal("server exited with error", zap.Error(err))
	}
}
