package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlTattoo/top-challenges/backend-ledger/internal/repository"
	"github.com/AlTattoo/top-challenges/backend-ledger/internal/worker"
	"github.com/AlTattoo/top-challenges/pkg/config"
	"github.com/AlTattoo/top-challenges/pkg/kafka"
	"github.com/AlTattoo/top-challenges/pkg/logger"
	pkgredis "github.com/AlTattoo/top-challenges/pkg/redis"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: "leaderboard-worker",
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Leaderboard Worker...")

	if !cfg.Redis.Enabled || len(cfg.Kafka.Brokers) == 0 {
		appLog.Fatal("Leaderboard worker needs Redis and Kafka brokers")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Redis connection
	redisClient, err := pkgredis.NewClient(ctx, pkgredis.ConfigFrom(cfg.Redis, false))
	if err != nil {
		appLog.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	board := repository.NewRedisLeaderboardRepository(redisClient)
	if err := board.LoadScripts(ctx); err != nil {
		appLog.Warn("Failed to pre-load Lua scripts", zap.Error(err))
	}
	appLog.Info("Redis connected")

	// Initialize Kafka consumer; a new group replays the topic from the start
	consumer, err := kafka.NewConsumer(ctx, &kafka.ConsumerConfig{
		Brokers:        cfg.Kafka.Brokers,
		GroupID:        cfg.Kafka.ConsumerGroup,
		Topics:         []string{cfg.Kafka.Topic},
		ClientID:       "leaderboard-worker",
		MaxRetries:     3,
		RetryInterval:  2 * time.Second,
		SessionTimeout: 30 * time.Second,
		FromStart:      true,
	})
	if err != nil {
		appLog.Fatal("Failed to create Kafka consumer", zap.Error(err))
	}
	defer consumer.Close()
	appLog.Info("Kafka consumer connected",
		zap.String("group", cfg.Kafka.ConsumerGroup),
		zap.String("topic", cfg.Kafka.Topic),
	)

	leaderboardWorker := worker.NewLeaderboardWorker(
		&worker.LeaderboardWorkerConfig{Season: cfg.Leaderboard.Season},
		consumer,
		board,
		appLog,
	)

	done := make(chan struct{})
	go func() {
		leaderboardWorker.Start(ctx)
		close(done)
	}()
	appLog.Info("Leaderboard worker started")

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("Shutting down leaderboard worker...")
	cancel()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		appLog.Warn("Leaderboard worker did not stop in time")
	}
	appLog.Info("Leaderboard worker stopped")
}
