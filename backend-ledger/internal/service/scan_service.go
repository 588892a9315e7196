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
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	msgGameSessionStarted = "Game session started"
	msgBarAccessGranted   = "Access granted to bar/snack zone"
)

// scanService implements ScanService
type scanService struct {
	repo           repository.ParticipantRepository
	locker         repository.ParticipantLocker
	eventPublisher EventPublisher
	now            func() time.Time
}

// NewScanService creates a new scan service
func NewScanService(repo repository.ParticipantRepository, locker repository.ParticipantLocker, eventPublisher EventPublisher) ScanService {
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &scanService{
		repo:           repo,
		locker:         locker,
		eventPublisher: eventPublisher,
		now:            time.Now,
	}
}

// Scan grants zone entry against a valid ticket, or bar/snack access when no zone is given
func (s *scanService) Scan(ctx context.Context, req *dto.ScanRequest) (*dto.ScanResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.scan.scan")
	defer span.End()

	if valid, msg := req.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		return nil, domain.NewValidationError(msg)
	}

	span.SetAttributes(
		attribute.String("participant_id", req.UserID),
		attribute.String("game_zone", req.GameZone),
	)

	if _, err := loadParticipant(ctx, s.repo, req.UserID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if !req.HasValidBadgeShape() {
		span.SetStatus(codes.Error, "invalid badge code")
		return nil, domain.NewValidationErrorFrom(domain.ErrInvalidBadgeCode)
	}

	// bar/snack entry never touches tickets
	if req.GameZone == "" {
		span.SetStatus(codes.Ok, "")
		return &dto.ScanResult{Message: msgBarAccessGranted}, nil
	}

	var ticketID string
	err := withParticipantLock(ctx, s.locker, req.UserID, func() error {
		var err error
		ticketID, err = s.consumeFirstValidTicket(ctx, req.UserID)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoValidTicket) {
			metrics.RecordScanDenied(ctx, req.GameZone)
		}
		telemetry.RecordError(span, err)
		return nil, err
	}

	sessionID := uuid.NewString()
	span.SetAttributes(attribute.String("session_id", sessionID))
	span.SetStatus(codes.Ok, "")

	metrics.RecordTicketConsumed(ctx, req.GameZone)
	publishBestEffort(ctx, s.eventPublisher, domain.NewLedgerEvent(
		domain.EventTicketConsumed, req.UserID,
		map[string]interface{}{"ticketId": ticketID, "gameZone": req.GameZone, "sessionId": sessionID},
		s.now().UTC(),
	))

	return &dto.ScanResult{
		Message:   msgGameSessionStarted,
		GameZone:  req.GameZone,
		SessionID: sessionID,
	}, nil
}

// consumeFirstValidTicket uses the first ticket in issue order that is valid now.
// The store re-checks validity, so a lost race surfaces as ErrNoValidTicket.
func (s *scanService) consumeFirstValidTicket(ctx context.Context, participantID string) (string, error) {
	participant, err := loadParticipant(ctx, s.repo, participantID)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	idx, ok := participant.FirstValidTicket(now)
	if !ok {
		return "", domain.NewForbiddenError(domain.ErrNoValidTicket)
	}

	ticketID := participant.Tickets[idx].ID
	if err := s.repo.ConsumeTicket(ctx, participantID, ticketID, now); err != nil {
		if errors.Is(err, repository.ErrTicketUnavailable) {
			return "", domain.NewForbiddenError(domain.ErrNoValidTicket)
		}
		if errors.Is(err, domain.ErrParticipantNotFound) {
			return "", domain.NewNotFoundError(err)
		}
		return "", fmt.Errorf("failed to consume ticket: %w", err)
	}
	return ticketID, nil
}
