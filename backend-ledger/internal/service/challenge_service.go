package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AlTattoo/top-challenges/backend-ledger/internal/domain"
	"github.com/AlTattoo/top-challenges/backend-ledger/internal/dto"
	"github.com/AlTattoo/top-challenges/backend-ledger/internal/metrics"
	"github.com/AlTattoo/top-challenges/backend-ledger/internal/repository"
	"github.com/AlTattoo/top-challenges/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// challengeService implements ChallengeService
type challengeService struct {
	repo           repository.ParticipantRepository
	locker         repository.ParticipantLocker
	eventPublisher EventPublisher
	now            func() time.Time
}

// NewChallengeService creates a new challenge service
func NewChallengeService(repo repository.ParticipantRepository, locker repository.ParticipantLocker, eventPublisher EventPublisher) ChallengeService {
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &challengeService{
		repo:           repo,
		locker:         locker,
		eventPublisher: eventPublisher,
		now:            time.Now,
	}
}

// AssignChallenge attaches a new challenge with no progress
func (s *challengeService) AssignChallenge(ctx context.Context, participantID string, req *dto.AssignChallengeRequest) (*domain.Challenge, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.challenge.assign")
	defer span.End()

	if valid, msg := req.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		return nil, domain.NewValidationError(msg)
	}

	span.SetAttributes(
		attribute.String("participant_id", participantID),
		attribute.String("title", req.Title),
	)

	var challenge domain.Challenge
	err := withParticipantLock(ctx, s.locker, participantID, func() error {
		challenge = domain.NewChallenge(req.Title, req.Description, req.Reward, req.Target, req.ExpiryDate.UTC(), s.now().UTC())
		if err := s.repo.AddChallenge(ctx, participantID, challenge); err != nil {
			return wrapRepoError("failed to add challenge", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("challenge_id", challenge.ID))
	span.SetStatus(codes.Ok, "")
	return &challenge, nil
}

// ListChallenges returns the participant's challenges in assignment order
func (s *challengeService) ListChallenges(ctx context.Context, participantID string) ([]domain.Challenge, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.challenge.list")
	defer span.End()

	participant, err := loadParticipant(ctx, s.repo, participantID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return participant.Challenges, nil
}

// ClaimReward marks the reward of a completed challenge claimed, expired or not
func (s *challengeService) ClaimReward(ctx context.Context, participantID, challengeID string) (*domain.Challenge, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.challenge.claim_reward")
	defer span.End()

	span.SetAttributes(
		attribute.String("participant_id", participantID),
		attribute.String("challenge_id", challengeID),
	)

	var claimed domain.Challenge
	err := withParticipantLock(ctx, s.locker, participantID, func() error {
		if err := s.repo.ClaimChallengeReward(ctx, participantID, challengeID, s.now().UTC()); err != nil {
			return wrapRepoError("failed to claim reward", err)
		}

		participant, err := loadParticipant(ctx, s.repo, participantID)
		if err != nil {
			return err
		}
		i, ok := participant.ChallengeIndex(challengeID)
		if !ok {
			return domain.NewNotFoundError(domain.ErrChallengeNotFound)
		}
		claimed = participant.Challenges[i]
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	at := s.now().UTC()
	if claimed.ClaimedAt != nil {
		at = *claimed.ClaimedAt
	}
	publishBestEffort(ctx, s.eventPublisher, domain.NewLedgerEvent(domain.EventRewardClaimed, participantID, claimed, at))
	return &claimed, nil
}

// ReconcileChallenges replays the score history against open challenges and
// raises the ones that fell behind
func (s *challengeService) ReconcileChallenges(ctx context.Context, participantID string) ([]domain.Challenge, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.challenge.reconcile")
	defer span.End()

	span.SetAttributes(attribute.String("participant_id", participantID))

	var changed []domain.Challenge
	err := withParticipantLock(ctx, s.locker, participantID, func() error {
		participant, err := loadParticipant(ctx, s.repo, participantID)
		if err != nil {
			return err
		}

		changed = domain.ReplayScores(participant.Challenges, participant.Scores)
		if len(changed) == 0 {
			return nil
		}
		if err := s.repo.UpdateChallenges(ctx, participantID, changed); err != nil {
			return wrapRepoError("failed to update challenges", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("updated_challenges", len(changed)))
	span.SetStatus(codes.Ok, "")

	now := s.now().UTC()
	var events []*domain.LedgerEvent
	for _, ch := range changed {
		if ch.Completed {
			events = append(events, domain.NewLedgerEvent(domain.EventChallengeCompleted, participantID, ch, now))
		}
	}
	metrics.RecordChallengesCompleted(ctx, len(events))
	publishBestEffort(ctx, s.eventPublisher, events...)

	return changed, nil
}

// wrapRepoError keeps typed domain errors caller-visible and wraps the rest
func wrapRepoError(msg string, err error) error {
	translated := translateRepoError(err)
	if translated != err {
		return translated
	}
	return fmt.Errorf("%s: %w", msg, err)
}
