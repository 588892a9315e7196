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

// sanctionService implements SanctionService
type sanctionService struct {
	repo           repository.ParticipantRepository
	locker         repository.ParticipantLocker
	eventPublisher EventPublisher
	now            func() time.Time
}

// NewSanctionService creates a new sanction service
func NewSanctionService(repo repository.ParticipantRepository, locker repository.ParticipantLocker, eventPublisher EventPublisher) SanctionService {
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &sanctionService{
		repo:           repo,
		locker:         locker,
		eventPublisher: eventPublisher,
		now:            time.Now,
	}
}

// IssueSanction appends a sanction to the target. The issuing admin is only checked for existence.
func (s *sanctionService) IssueSanction(ctx context.Context, req *dto.IssueSanctionRequest) (*domain.Sanction, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.sanction.issue")
	defer span.End()

	if valid, msg := req.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		return nil, domain.NewValidationError(msg)
	}

	span.SetAttributes(
		attribute.String("participant_id", req.UserID),
		attribute.String("admin_id", req.AdminID),
	)

	var sanction domain.Sanction
	err := withParticipantLock(ctx, s.locker, req.UserID, func() error {
		if _, err := loadParticipant(ctx, s.repo, req.UserID); err != nil {
			return err
		}

		adminExists, err := s.repo.Exists(ctx, req.AdminID)
		if err != nil {
			return fmt.Errorf("failed to look up admin: %w", err)
		}
		if !adminExists {
			return domain.NewNotFoundError(domain.ErrAdminNotFound)
		}

		sanction = domain.NewSanction(req.Reason, req.AdminID, s.now().UTC())
		if err := s.repo.AppendSanction(ctx, req.UserID, sanction); err != nil {
			return fmt.Errorf("failed to append sanction: %w", translateRepoError(err))
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	metrics.RecordSanction(ctx)
	publishBestEffort(ctx, s.eventPublisher, domain.NewLedgerEvent(domain.EventSanctionIssued, req.UserID, sanction, sanction.Date))

	return &sanction, nil
}

// ListSanctions returns the participant's sanctions in issue order
func (s *sanctionService) ListSanctions(ctx context.Context, participantID string) ([]domain.Sanction, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.sanction.list")
	defer span.End()

	participant, err := loadParticipant(ctx, s.repo, participantID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return participant.Sanctions, nil
}
