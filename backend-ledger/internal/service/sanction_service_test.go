package service

import (
	"context"
	"testing"

	"github.com/AlTattoo/top-challenges/backend-ledger/internal/domain"
	"github.com/AlTattoo/top-challenges/backend-ledger/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueSanction(t *testing.T) {
	f := newFixture()
	svc := NewSanctionService(f.repo, f.locker, f.publisher).(*sanctionService)
	svc.now = fixedClock(t0)
	target := f.seed(t, "PlayerOne", "0601020304")
	admin := f.seed(t, "Admin", "0700000000")

	sanction, err := svc.IssueSanction(context.Background(), &dto.IssueSanctionRequest{UserID: target.ID, Reason: "cheating", AdminID: admin.ID})
	require.NoError(t, err)
	assert.Equal(t, "cheating", sanction.Reason)
	assert.Equal(t, admin.ID, sanction.AdminID)
	assert.Equal(t, t0, sanction.Date)

	list, err := svc.ListSanctions(context.Background(), target.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, sanction.ID, list[0].ID)

	issuer, _ := f.repo.GetByID(context.Background(), admin.ID)
	assert.Empty(t, issuer.Sanctions, "issuer is untouched")
	assert.Equal(t, []domain.LedgerEventType{domain.EventSanctionIssued}, f.publisher.Types())
}

func TestIssueSanction_TwoIssuersKeepAppendOrder(t *testing.T) {
	f := newFixture()
	svc := NewSanctionService(f.repo, f.locker, f.publisher).(*sanctionService)
	svc.now = fixedClock(t0)
	target := f.seed(t, "PlayerOne", "0601020304")
	first := f.seed(t, "AdminOne", "0700000001")
	second := f.seed(t, "AdminTwo", "0700000002")

	a, err := svc.IssueSanction(context.Background(), &dto.IssueSanctionRequest{UserID: target.ID, Reason: "late", AdminID: first.ID})
	require.NoError(t, err)
	b, err := svc.IssueSanction(context.Background(), &dto.IssueSanctionRequest{UserID: target.ID, Reason: "rude", AdminID: second.ID})
	require.NoError(t, err)

	list, err := svc.ListSanctions(context.Background(), target.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, first.ID, list[0].AdminID)
	assert.Equal(t, "late", list[0].Reason)
	assert.Equal(t, b.ID, list[1].ID)
	assert.Equal(t, second.ID, list[1].AdminID)
	assert.Equal(t, "rude", list[1].Reason)

	for _, admin := range []string{first.ID, second.ID} {
		issuer, _ := f.repo.GetByID(context.Background(), admin)
		assert.Empty(t, issuer.Sanctions)
	}
}

func TestIssueSanction_Errors(t *testing.T) {
	f := newFixture()
	svc := NewSanctionService(f.repo, f.locker, f.publisher)
	target := f.seed(t, "PlayerOne", "0601020304")

	_, err := svc.IssueSanction(context.Background(), &dto.IssueSanctionRequest{UserID: target.ID, Reason: "cheating"})
	assert.True(t, domain.IsValidationError(err))
	assert.Equal(t, "User ID, reason, and admin ID are required", err.Error())

	_, err = svc.IssueSanction(context.Background(), &dto.IssueSanctionRequest{UserID: "missing", Reason: "cheating", AdminID: target.ID})
	assert.True(t, domain.IsNotFoundError(err))
	assert.ErrorIs(t, err, domain.ErrParticipantNotFound)

	_, err = svc.IssueSanction(context.Background(), &dto.IssueSanctionRequest{UserID: target.ID, Reason: "cheating", AdminID: "missing"})
	assert.True(t, domain.IsNotFoundError(err))
	assert.ErrorIs(t, err, domain.ErrAdminNotFound)

	stored, _ := f.repo.GetByID(context.Background(), target.ID)
	assert.Empty(t, stored.Sanctions)
	assert.Empty(t, f.publisher.Types())
}

func TestNotify(t *testing.T) {
	f := newFixture()
	svc := NewNotificationService(f.repo).(*notificationService)
	svc.now = fixedClock(t0)
	p := f.seed(t, "PlayerOne", "0601020304")

	n, err := svc.Notify(context.Background(), &dto.NotifyRequest{UserID: p.ID, Message: "Your session starts", Type: "info"})
	require.NoError(t, err)
	assert.Equal(t, dto.Notification{UserID: p.ID, Message: "Your session starts", Type: "info", SentAt: t0}, *n)

	_, err = svc.Notify(context.Background(), &dto.NotifyRequest{UserID: p.ID, Message: "x"})
	assert.True(t, domain.IsValidationError(err))

	_, err = svc.Notify(context.Background(), &dto.NotifyRequest{UserID: "missing", Message: "x", Type: "info"})
	assert.True(t, domain.IsNotFoundError(err))
}
