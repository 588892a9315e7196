package di

import (
	"github.com/AlTattoo/top-challenges/backend-ledger/internal/handler"
	"github.com/AlTattoo/top-challenges/backend-ledger/internal/repository"
	"github.com/AlTattoo/top-challenges/backend-ledger/internal/service"
)

// Container holds all dependencies for the ledger service
type Container struct {
	// Repositories
	ParticipantRepo repository.ParticipantRepository
	Locker          repository.ParticipantLocker
	Leaderboard     repository.LeaderboardRepository

	// Publishers
	EventPublisher service.EventPublisher

	// Services
	ParticipantService  service.ParticipantService
	ScanService         service.ScanService
	ScoreService        service.ScoreService
	SanctionService     service.SanctionService
	NotificationService service.NotificationService
	ChallengeService    service.ChallengeService
	RankingService      service.RankingService

	// Handlers
	HealthHandler       *handler.HealthHandler
	ParticipantHandler  *handler.ParticipantHandler
	ScanHandler         *handler.ScanHandler
	ScoreHandler        *handler.ScoreHandler
	SanctionHandler     *handler.SanctionHandler
	NotificationHandler *handler.NotificationHandler
	ChallengeHandler    *handler.ChallengeHandler
	RankingHandler      *handler.RankingHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	ServiceName     string
	ParticipantRepo repository.ParticipantRepository
	Locker          repository.ParticipantLocker
	// Leaderboard is nil when Redis is disabled; rankings then answer 503
	Leaderboard    repository.LeaderboardRepository
	EventPublisher service.EventPublisher
	// HealthComponents are checked by /ready
	HealthComponents map[string]handler.HealthChecker
	ScoreConfig      *service.ScoreServiceConfig
	RankingConfig    *service.RankingServiceConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		ParticipantRepo: cfg.ParticipantRepo,
		Locker:          cfg.Locker,
		Leaderboard:     cfg.Leaderboard,
		EventPublisher:  cfg.EventPublisher,
	}
	if c.EventPublisher == nil {
		c.EventPublisher = service.NewNoOpEventPublisher()
	}

	// Initialize services
	c.ParticipantService = service.NewParticipantService(c.ParticipantRepo, c.EventPublisher)
	c.ScanService = service.NewScanService(c.ParticipantRepo, c.Locker, c.EventPublisher)
	c.ScoreService = service.NewScoreService(c.ParticipantRepo, c.Locker, c.Leaderboard, c.EventPublisher, cfg.ScoreConfig)
	c.SanctionService = service.NewSanctionService(c.ParticipantRepo, c.Locker, c.EventPublisher)
	c.NotificationService = service.NewNotificationService(c.ParticipantRepo)
	c.ChallengeService = service.NewChallengeService(c.ParticipantRepo, c.Locker, c.EventPublisher)
	c.RankingService = service.NewRankingService(c.Leaderboard, cfg.RankingConfig)

	// Initialize handlers
	components := cfg.HealthComponents
	if components == nil {
		components = map[string]handler.HealthChecker{"store": c.ParticipantRepo}
	}
	c.HealthHandler = handler.NewHealthHandler(cfg.ServiceName, components)
	c.ParticipantHandler = handler.NewParticipantHandler(c.ParticipantService)
	c.ScanHandler = handler.NewScanHandler(c.ScanService)
	c.ScoreHandler = handler.NewScoreHandler(c.ScoreService)
	c.SanctionHandler = handler.NewSanctionHandler(c.SanctionService)
	c.NotificationHandler = handler.NewNotificationHandler(c.NotificationService)
	c.ChallengeHandler = handler.NewChallengeHandler(c.ChallengeService)
	c.RankingHandler = handler.NewRankingHandler(c.RankingService)

	return c
}
