// Package main runs the background match refresh sweep.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aura-events/networking/config"
	"github.com/aura-events/networking/internal/matching"
	"github.com/aura-events/networking/internal/profiles"
	"github.com/aura-events/networking/internal/worker"
	"github.com/aura-events/networking/pkg/database"
	"github.com/aura-events/networking/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), database.PoolOptions{MaxConns: int32(cfg.Database.MaxConns)}, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	matchingSvc := matching.NewService(
		matching.NewRepository(pool),
		profiles.NewRepository(pool),
		matching.NewRedisStateStore(rdb.Client, cfg.Networking.GenerationTTL),
		matching.Options{
			PoolSize:    cfg.Networking.CandidatePoolSize,
			MinScore:    cfg.Networking.MinScore,
			MaxPrimary:  cfg.Networking.MaxPrimary,
			MaxFallback: cfg.Networking.MaxFallback,
		},
		logger,
	)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := worker.NewSweeper(matchingSvc, cfg.Networking.SweepSpec, logger)
	if err := sweeper.Start(workerCtx); err != nil {
		logger.Fatal("sweeper", zap.Error(err))
	}
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	sweeper.Stop()
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
