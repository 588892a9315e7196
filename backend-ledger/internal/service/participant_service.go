package service

import (
	"context"
	"errors"
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

// participantService implements ParticipantService
type participantService struct {
	repo           repository.ParticipantRepository
	eventPublisher EventPublisher
	now            func() time.Time
}

// NewParticipantService creates a new participant service
func NewParticipantService(repo repository.ParticipantRepository, eventPublisher EventPublisher) ParticipantService {
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &participantService{
		repo:           repo,
		eventPublisher: eventPublisher,
		now:            time.Now,
	}
}

// Register creates a participant holding one fresh ticket
func (s *participantService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.participant.register")
	defer span.End()

	req.Normalize()
	if valid, msg := req.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		return nil, domain.NewValidationError(msg)
	}

	existing, err := s.repo.FindByPseudoOrPhone(ctx, req.Pseudo, req.PhoneNumber)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to look up participant: %w", err)
	}
	if existing != nil {
		span.SetStatus(codes.Error, "participant exists")
		return nil, domain.NewConflictError(domain.ErrParticipantExists)
	}

	participant := domain.NewParticipant(req.Pseudo, req.PhoneNumber, req.ProfilePicture, s.now().UTC())
	if err := s.repo.Create(ctx, participant); err != nil {
		// the unique indexes catch a registration racing ours past the lookup
		if errors.Is(err, domain.ErrParticipantExists) {
			span.SetStatus(codes.Error, "participant exists")
			return nil, domain.NewConflictError(domain.ErrParticipantExists)
		}
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}

	span.SetAttributes(attribute.String("participant_id", participant.ID))
	span.SetStatus(codes.Ok, "")

	metrics.RecordRegistration(ctx)
	publishBestEffort(ctx, s.eventPublisher, domain.NewLedgerEvent(
		domain.EventParticipantRegistered, participant.ID,
		map[string]interface{}{"pseudo": participant.Pseudo, "tickets": len(participant.Tickets)},
		participant.CreatedAt,
	))

	return dto.NewRegisterResponse(participant), nil
}

// GetParticipant returns the full participant aggregate
func (s *participantService) GetParticipant(ctx context.Context, participantID string) (*domain.Participant, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.participant.get")
	defer span.End()

	if participantID == "" {
		return nil, domain.NewValidationError("User ID is required")
	}
	return loadParticipant(ctx, s.repo, participantID)
}

// loadParticipant reads a participant and turns absence into a NotFoundError
func loadParticipant(ctx context.Context, repo repository.ParticipantRepository, participantID string) (*domain.Participant, error) {
	participant, err := repo.GetByID(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	if participant == nil {
		return nil, domain.NewNotFoundError(domain.ErrParticipantNotFound)
	}
	return participant, nil
}

// withParticipantLock runs fn while holding the participant's mutation lock
func withParticipantLock(ctx context.Context, locker repository.ParticipantLocker, participantID string, fn func() error) error {
	unlock, err := locker.Lock(ctx, participantID)
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

// translateRepoError maps repository sentinels onto typed domain errors
func translateRepoError(err error) error {
	switch {
	case errors.Is(err, domain.ErrParticipantNotFound),
		errors.Is(err, domain.ErrChallengeNotFound):
		return domain.NewNotFoundError(err)
	case errors.Is(err, domain.ErrChallengeNotCompleted):
		return domain.NewForbiddenError(err)
	case errors.Is(err, domain.ErrRewardAlreadyClaimed),
		errors.Is(err, domain.ErrParticipantExists):
		return domain.NewConflictError(err)
	}
	return err
}
