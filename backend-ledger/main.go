package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlTattoo/top-challenges/backend-ledger/internal/di"
	"github.com/AlTattoo/top-challenges/backend-ledger/internal/handler"
	"github.com/AlTattoo/top-challenges/backend-ledger/internal/metrics"
	"github.com/AlTattoo/top-challenges/backend-ledger/internal/repository"
	"github.com/AlTattoo/top-challenges/backend-ledger/internal/service"
	"github.com/AlTattoo/top-challenges/pkg/config"
	"github.com/AlTattoo/top-challenges/pkg/database"
	"github.com/AlTattoo/top-challenges/pkg/logger"
	"github.com/AlTattoo/top-challenges/pkg/middleware"
	"github.com/AlTattoo/top-challenges/pkg/mongodb"
	pkgredis "github.com/AlTattoo/top-challenges/pkg/redis"
	"github.com/AlTattoo/top-challenges/pkg/telemetry"
	"github.com/gin-gonic/gin"
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
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Ledger Service...", zap.String("store", cfg.Store.Driver))

	ctx := context.Background()

	// Initialize telemetry
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Fatal("Telemetry initialization failed", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			appLog.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}()
	metrics.Init()

	components := map[string]handler.HealthChecker{}

	// Initialize participant store
	var participantRepo repository.ParticipantRepository
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		db, err := database.NewPostgres(ctx, database.PostgresConfigFrom(cfg.LedgerDatabase, cfg.OTel.Enabled))
		if err != nil {
			appLog.Fatal("Database connection failed", zap.Error(err))
		}
		defer db.Close()

		repo := repository.NewPostgresParticipantRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			appLog.Fatal("Failed to apply ledger schema", zap.Error(err))
		}
		participantRepo = repo
		appLog.Info("Database connected", zap.String("database", cfg.LedgerDatabase.DBName))

	case config.StoreDriverMongoDB:
		client, err := mongodb.Connect(ctx, mongodb.ConfigFrom(cfg.MongoDB))
		if err != nil {
			appLog.Fatal("MongoDB connection failed", zap.Error(err))
		}
		defer func() {
			if err := client.Close(context.Background()); err != nil {
				appLog.Warn("MongoDB disconnect failed", zap.Error(err))
			}
		}()

		repo := repository.NewMongoParticipantRepository(client)
		if err := repo.EnsureIndexes(ctx); err != nil {
			appLog.Fatal("Failed to create participant indexes", zap.Error(err))
		}
		participantRepo = repo
		appLog.Info("MongoDB connected", zap.String("database", cfg.MongoDB.Database))

	default:
		participantRepo = repository.NewMemoryParticipantRepository()
		appLog.Warn("Using in-memory participant store, data is lost on restart")
	}
	components["store"] = participantRepo

	// Initialize Redis: participant locks, leaderboard and idempotency records
	var (
		redisClient *pkgredis.Client
		locker      repository.ParticipantLocker
		leaderboard repository.LeaderboardRepository
		idempotency middleware.RedisClient
	)
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(ctx, pkgredis.ConfigFrom(cfg.Redis, cfg.OTel.Enabled))
		if err != nil {
			appLog.Fatal("Redis connection failed", zap.Error(err))
		}
		defer redisClient.Close()

		board := repository.NewRedisLeaderboardRepository(redisClient)
		if err := board.LoadScripts(ctx); err != nil {
			appLog.Warn("Failed to pre-load Lua scripts", zap.Error(err))
		} else {
			appLog.Info("Lua scripts pre-loaded into Redis")
		}

		locker = repository.NewRedisParticipantLocker(redisClient, cfg.Ledger.LockTTL, cfg.Ledger.LockWait)
		leaderboard = board
		idempotency = redisClient
		components["redis"] = redisClient
		appLog.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	} else {
		locker = repository.NewMemoryParticipantLocker(cfg.Ledger.LockWait)
		appLog.Warn("Redis disabled: in-process locks, rankings unavailable")
	}

	// Initialize Kafka event publisher
	var eventPublisher service.EventPublisher = service.NewNoOpEventPublisher()
	if cfg.Kafka.Enabled {
		kafkaPublisher, err := service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.Topic,
			ServiceName: cfg.App.Name,
			ClientID:    cfg.Kafka.ClientID,
		})
		if err != nil {
			appLog.Warn("Kafka connection failed, using no-op publisher", zap.Error(err))
		} else {
			eventPublisher = kafkaPublisher
			components["kafka"] = kafkaPublisher
			appLog.Info("Kafka event publisher connected", zap.String("topic", cfg.Kafka.Topic))
		}
	}
	defer eventPublisher.Close()

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		ServiceName:      cfg.App.Name,
		ParticipantRepo:  participantRepo,
		Locker:           locker,
		Leaderboard:      leaderboard,
		EventPublisher:   eventPublisher,
		HealthComponents: components,
		ScoreConfig:      &service.ScoreServiceConfig{Season: cfg.Leaderboard.Season},
		RankingConfig: &service.RankingServiceConfig{
			Season: cfg.Leaderboard.Season,
			TopN:   cfg.Leaderboard.TopN,
		},
	})

	// Setup Gin
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(telemetry.TracingMiddleware(cfg.App.Name))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(appLog))

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	idempotent := middleware.Idempotency(&middleware.IdempotencyConfig{
		Redis:      idempotency,
		TTL:        cfg.Idempotency.TTL,
		RequireKey: cfg.Idempotency.RequireKey,
	})

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/register", idempotent, container.ParticipantHandler.Register)
		v1.POST("/scan", idempotent, container.ScanHandler.Scan)
		v1.POST("/scores", idempotent, container.ScoreHandler.RecordScore)
		v1.GET("/scores", container.ScoreHandler.GetScores)
		v1.POST("/sanctions", idempotent, container.SanctionHandler.IssueSanction)
		v1.POST("/notifications", idempotent, container.NotificationHandler.Notify)
		v1.GET("/rankings", container.RankingHandler.GetRankings)

		participants := v1.Group("/participants/:id")
		{
			participants.GET("", container.ParticipantHandler.GetParticipant)
			participants.GET("/sanctions", container.SanctionHandler.ListSanctions)
			participants.GET("/challenges", container.ChallengeHandler.ListChallenges)
			participants.POST("/challenges", idempotent, container.ChallengeHandler.AssignChallenge)
			participants.POST("/challenges/reconcile", idempotent, container.ChallengeHandler.ReconcileChallenges)
			participants.POST("/challenges/:challengeId/claim", idempotent, container.ChallengeHandler.ClaimReward)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	go func() {
		appLog.Info("Ledger Service listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server forced to shutdown", zap.Error(err))
	}

	appLog.Info("Server exited gracefully")
}
