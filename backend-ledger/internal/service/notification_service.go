package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AlTattoo/top-challenges/backend-ledger/internal/domain"
	"github.com/AlTattoo/top-challenges/backend-ledger/internal/dto"
	"github.com/AlTattoo/top-challenges/backend-ledger/internal/repository"
	"github.com/AlTattoo/top-challenges/pkg/telemetry"
	"go.opentelemetry.io/otel/codes"
)

// notificationService implements NotificationService. Nothing is stored or delivered.
type notificationService struct {
	repo repository.ParticipantRepository
	now  func() time.Time
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo repository.ParticipantRepository) NotificationService {
	return &notificationService{repo: repo, now: time.Now}
}

// Notify echoes the notification once the participant is known
func (s *notificationService) Notify(ctx context.Context, req *dto.NotifyRequest) (*dto.Notification, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.notification.notify")
	defer span.End()

	if valid, msg := req.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		return nil, domain.NewValidationError(msg)
	}

	exists, err := s.repo.Exists(ctx, req.UserID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to look up participant: %w", err)
	}
	if !exists {
		span.SetStatus(codes.Error, "participant not found")
		return nil, domain.NewNotFoundError(domain.ErrParticipantNotFound)
	}

	span.SetStatus(codes.Ok, "")
	return &dto.Notification{
		UserID:  req.UserID,
		Message: req.Message,
		Type:    req.Type,
		SentAt:  s.now().UTC(),
	}, nil
}
