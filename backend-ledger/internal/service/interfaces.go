package service

import (
	"context"

	"github.com/AlTattoo/top-challenges/backend-ledger/internal/domain"
	"github.com/AlTattoo/top-challenges/backend-ledger/internal/dto"
)

// ParticipantService defines the interface for participant registration and lookup
type ParticipantService interface {
	// Register creates a participant holding one fresh ticket
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)

	// GetParticipant returns the full participant aggregate
	GetParticipant(ctx context.Context, participantID string) (*domain.Participant, error)
}

// ScanService defines the interface for badge scans at venue entrances
type ScanService interface {
	// Scan grants zone entry against a valid ticket, or bar/snack access when no zone is given
	Scan(ctx context.Context, req *dto.ScanRequest) (*dto.ScanResult, error)
}

// ScoreService defines the interface for score recording and retrieval
type ScoreService interface {
	// RecordScore appends a score and advances the matching challenges
	RecordScore(ctx context.Context, req *dto.RecordScoreRequest) (*dto.RecordScoreResult, error)

	// GetScores returns the filtered score history, most recent first
	GetScores(ctx context.Context, filter *dto.ScoreFilter) ([]domain.ScoreEntry, error)
}

// SanctionService defines the interface for administrative sanctions
type SanctionService interface {
	// IssueSanction records a sanction issued by an admin against a participant
	IssueSanction(ctx context.Context, req *dto.IssueSanctionRequest) (*domain.Sanction, error)

	// ListSanctions returns the participant's sanctions in issue order
	ListSanctions(ctx context.Context, participantID string) ([]domain.Sanction, error)
}

// NotificationService defines the interface for participant notifications
type NotificationService interface {
	// Notify accepts a notification for an existing participant
	Notify(ctx context.Context, req *dto.NotifyRequest) (*dto.Notification, error)
}

// ChallengeService defines the interface for challenge administration
type ChallengeService interface {
	// AssignChallenge attaches a new challenge to a participant
	AssignChallenge(ctx context.Context, participantID string, req *dto.AssignChallengeRequest) (*domain.Challenge, error)

	// ListChallenges returns the participant's challenges in assignment order
	ListChallenges(ctx context.Context, participantID string) ([]domain.Challenge, error)

	// ClaimReward marks the reward of a completed challenge claimed
	ClaimReward(ctx context.Context, participantID, challengeID string) (*domain.Challenge, error)

	// ReconcileChallenges replays the score history against open challenges
	ReconcileChallenges(ctx context.Context, participantID string) ([]domain.Challenge, error)
}

// RankingService defines the interface for leaderboard queries
type RankingService interface {
	// GetRankings returns the local board and the participant's season standing
	GetRankings(ctx context.Context, query *dto.RankingQuery) (*dto.RankingsResponse, error)
}
