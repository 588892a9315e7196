package repository

import (
	"context"
	"errors"
	"time"

	"github.com/AlTattoo/top-challenges/backend-ledger/internal/domain"
)

// ErrTicketUnavailable is returned by ConsumeTicket when the ticket was already
// used, has expired or does not belong to the participant
var ErrTicketUnavailable = errors.New("ticket unavailable")

// ParticipantRepository persists Participant aggregates.
// Lookups return (nil, nil) when nothing matches. Mutations on a missing
// participant return domain.ErrParticipantNotFound.
type ParticipantRepository interface {
	// Create inserts a new participant with its tickets. A pseudo or phone
	// number already in use yields domain.ErrParticipantExists.
	Create(ctx context.Context, participant *domain.Participant) error
	// GetByID returns the full aggregate
	GetByID(ctx context.Context, id string) (*domain.Participant, error)
	// FindByPseudoOrPhone returns any participant holding pseudo or phoneNumber
	FindByPseudoOrPhone(ctx context.Context, pseudo, phoneNumber string) (*domain.Participant, error)
	// Exists reports whether a participant with id exists
	Exists(ctx context.Context, id string) (bool, error)
	// ConsumeTicket marks the ticket used if it is still unused and unexpired at now
	ConsumeTicket(ctx context.Context, participantID, ticketID string, now time.Time) error
	// AppendScore appends a score entry
	AppendScore(ctx context.Context, participantID string, score domain.ScoreEntry) error
	// UpdateChallenges stores progress and completion of the given challenges
	UpdateChallenges(ctx context.Context, participantID string, challenges []domain.Challenge) error
	// AddChallenge appends a challenge
	AddChallenge(ctx context.Context, participantID string, challenge domain.Challenge) error
	// ClaimChallengeReward marks the reward of a completed challenge claimed.
	// Returns domain.ErrChallengeNotFound, domain.ErrChallengeNotCompleted or
	// domain.ErrRewardAlreadyClaimed when the claim cannot be applied.
	ClaimChallengeReward(ctx context.Context, participantID, challengeID string, at time.Time) error
	// AppendSanction appends a sanction
	AppendSanction(ctx context.Context, participantID string, sanction domain.Sanction) error
	// HealthCheck reports whether the store answers
	HealthCheck(ctx context.Context) error
}

// LeaderboardScore is a score to fold into the leaderboards
type LeaderboardScore struct {
	ParticipantID string
	Pseudo        string
	GameZone      string
	Location      string
	Season        string
	Score         float64
}

// LeaderboardRepository keeps the best score per participant on each board
type LeaderboardRepository interface {
	// Submit raises the participant's best score on the local and season boards
	Submit(ctx context.Context, score LeaderboardScore) error
	// TopLocal returns the n best entries of the zone+location board
	TopLocal(ctx context.Context, zone, location string, n int) ([]domain.RankingEntry, error)
	// SeasonStanding returns the participant's rank on the season board, nil when unranked
	SeasonStanding(ctx context.Context, season, zone, participantID string) (*domain.SeasonStanding, error)
}

// ParticipantLocker serializes mutations of one participant
type ParticipantLocker interface {
	// Lock blocks until the participant's lock is held or ctx/wait expires.
	// The returned function releases it.
	Lock(ctx context.Context, participantID string) (unlock func(), err error)
}
