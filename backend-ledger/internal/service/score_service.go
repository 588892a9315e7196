package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AlTattoo/top-challenges/backend-ledger/internal/domain"
	"github.com/AlTattoo/top-challenges/backend-ledger/internal/dto"
	"github.com/AlTattoo/top-challenges/backend-ledger/internal/metrics"
	"github.com/AlTattoo/top-challenges/backend-ledger/internal/repository"
	"github.com/AlTattoo/top-challenges/pkg/logger"
	"github.com/AlTattoo/top-challenges/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const msgScoreRecorded = "Score recorded successfully"

// scoreService implements ScoreService
type scoreService struct {
	repo           repository.ParticipantRepository
	locker         repository.ParticipantLocker
	leaderboard    repository.LeaderboardRepository
	eventPublisher EventPublisher
	season         string
	now            func() time.Time
}

// ScoreServiceConfig contains configuration for score service
type ScoreServiceConfig struct {
	// Season names the season board scores are folded into
	Season string
}

// NewScoreService creates a new score service. leaderboard may be nil when Redis is unavailable.
func NewScoreService(
	repo repository.ParticipantRepository,
	locker repository.ParticipantLocker,
	leaderboard repository.LeaderboardRepository,
	eventPublisher EventPublisher,
	cfg *ScoreServiceConfig,
) ScoreService {
	season := "current"
	if cfg != nil && cfg.Season != "" {
		season = cfg.Season
	}
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &scoreService{
		repo:           repo,
		locker:         locker,
		leaderboard:    leaderboard,
		eventPublisher: eventPublisher,
		season:         season,
		now:            time.Now,
	}
}

// RecordScore appends a score, then persists the challenges it advanced.
// The two writes are separate; ReconcileChallenges repairs a failure between them.
func (s *scoreService) RecordScore(ctx context.Context, req *dto.RecordScoreRequest) (*dto.RecordScoreResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.score.record")
	defer span.End()

	if valid, msg := req.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		return nil, domain.NewValidationError(msg)
	}

	span.SetAttributes(
		attribute.String("participant_id", req.UserID),
		attribute.String("game_zone", req.GameZone),
		attribute.String("location", req.Location),
		attribute.Float64("score", *req.Score),
	)

	var (
		entry       domain.ScoreEntry
		changed     []domain.Challenge
		participant *domain.Participant
	)
	err := withParticipantLock(ctx, s.locker, req.UserID, func() error {
		var err error
		participant, err = loadParticipant(ctx, s.repo, req.UserID)
		if err != nil {
			return err
		}

		entry = domain.NewScoreEntry(req.GameZone, *req.Score, req.Location, s.now().UTC())
		if err := s.repo.AppendScore(ctx, req.UserID, entry); err != nil {
			return fmt.Errorf("failed to append score: %w", translateRepoError(err))
		}

		changed = domain.ApplyScore(participant.Challenges, entry.GameZone, entry.Score)
		if len(changed) == 0 {
			return nil
		}
		if err := s.repo.UpdateChallenges(ctx, req.UserID, changed); err != nil {
			return fmt.Errorf("failed to update challenges: %w", translateRepoError(err))
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("updated_challenges", len(changed)))
	span.SetStatus(codes.Ok, "")

	metrics.RecordScore(ctx, entry.GameZone, entry.Location, entry.Score)
	s.submitToLeaderboard(ctx, participant, entry)

	events := []*domain.LedgerEvent{
		domain.NewLedgerEvent(domain.EventScoreRecorded, req.UserID, domain.ScoreRecordedPayload{
			ScoreEntry: entry,
			Pseudo:     participant.Pseudo,
			Season:     s.season,
		}, entry.Date),
	}
	completed := 0
	for _, ch := range changed {
		if ch.Completed {
			completed++
			events = append(events, domain.NewLedgerEvent(domain.EventChallengeCompleted, req.UserID, ch, entry.Date))
		}
	}
	metrics.RecordChallengesCompleted(ctx, completed)
	publishBestEffort(ctx, s.eventPublisher, events...)

	return &dto.RecordScoreResult{
		Message:           msgScoreRecorded,
		NewScore:          entry,
		UpdatedChallenges: changed,
	}, nil
}

// submitToLeaderboard folds the score into the boards; rankings are derived
// data, so failures are logged only
func (s *scoreService) submitToLeaderboard(ctx context.Context, participant *domain.Participant, entry domain.ScoreEntry) {
	if s.leaderboard == nil {
		return
	}
	err := s.leaderboard.Submit(ctx, repository.LeaderboardScore{
		ParticipantID: participant.ID,
		Pseudo:        participant.Pseudo,
		GameZone:      entry.GameZone,
		Location:      entry.Location,
		Season:        s.season,
		Score:         entry.Score,
	})
	if err != nil {
		logger.Get().WithContext(ctx).Warn("failed to update leaderboard",
			zap.String("participant_id", participant.ID),
			zap.String("game_zone", entry.GameZone),
			zap.Error(err),
		)
	}
}

// GetScores returns the filtered score history, most recent first
func (s *scoreService) GetScores(ctx context.Context, filter *dto.ScoreFilter) ([]domain.ScoreEntry, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.score.list")
	defer span.End()

	if valid, msg := filter.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		return nil, domain.NewValidationError(msg)
	}

	participant, err := loadParticipant(ctx, s.repo, filter.UserID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	scores := domain.FilterScores(participant.Scores, filter.GameZone, filter.Location)
	span.SetAttributes(attribute.Int("scores", len(scores)))
	span.SetStatus(codes.Ok, "")
	return scores, nil
}
