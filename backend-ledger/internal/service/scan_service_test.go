package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/AlTattoo/top-challenges/backend-ledger/internal/domain"
	"github.com/AlTattoo/top-challenges/backend-ledger/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const badge = "ABCDEFGHIJ"

func newTestScanService(f *fixture, now time.Time) *scanService {
	svc := NewScanService(f.repo, f.locker, f.publisher).(*scanService)
	svc.now = fixedClock(now)
	return svc
}

func TestScan_GameZoneConsumesTicketOnce(t *testing.T) {
	f := newFixture()
	svc := newTestScanService(f, t0)
	p := f.seed(t, "PlayerOne", "0601020304")

	result, err := svc.Scan(context.Background(), &dto.ScanRequest{UserID: p.ID, BadgeCode: badge, GameZone: "foot"})
	require.NoError(t, err)
	assert.Equal(t, "Game session started", result.Message)
	assert.Equal(t, "foot", result.GameZone)
	assert.NotEmpty(t, result.SessionID)

	stored, _ := f.repo.GetByID(context.Background(), p.ID)
	assert.True(t, stored.Tickets[0].IsUsed)

	_, err = svc.Scan(context.Background(), &dto.ScanRequest{UserID: p.ID, BadgeCode: badge, GameZone: "foot"})
	assert.True(t, domain.IsForbiddenError(err))
	assert.ErrorIs(t, err, domain.ErrNoValidTicket)
	assert.Equal(t, []domain.LedgerEventType{domain.EventTicketConsumed}, f.publisher.Types())
}

func TestScan_UsesTicketsInIssueOrder(t *testing.T) {
	f := newFixture()
	svc := newTestScanService(f, t0)
	p := domain.NewParticipant("PlayerOne", "0601020304", nil, t0)
	p.Tickets = append(p.Tickets, domain.NewTicket(t0))
	require.NoError(t, f.repo.Create(context.Background(), p))

	a, err := svc.Scan(context.Background(), &dto.ScanRequest{UserID: p.ID, BadgeCode: badge, GameZone: "foot"})
	require.NoError(t, err)

	stored, _ := f.repo.GetByID(context.Background(), p.ID)
	assert.True(t, stored.Tickets[0].IsUsed)
	assert.False(t, stored.Tickets[1].IsUsed)

	b, err := svc.Scan(context.Background(), &dto.ScanRequest{UserID: p.ID, BadgeCode: badge, GameZone: "tir"})
	require.NoError(t, err)
	assert.NotEqual(t, a.SessionID, b.SessionID)

	stored, _ = f.repo.GetByID(context.Background(), p.ID)
	assert.True(t, stored.Tickets[1].IsUsed)
}

func TestScan_ExpiredTicketIsForbidden(t *testing.T) {
	f := newFixture()
	svc := newTestScanService(f, t0.Add(domain.TicketValidity+time.Hour))
	p := f.seed(t, "PlayerOne", "0601020304")

	_, err := svc.Scan(context.Background(), &dto.ScanRequest{UserID: p.ID, BadgeCode: badge, GameZone: "foot"})
	assert.True(t, domain.IsForbiddenError(err))

	stored, _ := f.repo.GetByID(context.Background(), p.ID)
	assert.False(t, stored.Tickets[0].IsUsed)
}

func TestScan_BarAccessNeverMutates(t *testing.T) {
	f := newFixture()
	svc := newTestScanService(f, t0.Add(domain.TicketValidity+time.Hour))
	p := f.seed(t, "PlayerOne", "0601020304")

	for i := 0; i < 3; i++ {
		result, err := svc.Scan(context.Background(), &dto.ScanRequest{UserID: p.ID, BadgeCode: badge})
		require.NoError(t, err)
		assert.Equal(t, "Access granted to bar/snack zone", result.Message)
		assert.Empty(t, result.SessionID)
	}

	stored, _ := f.repo.GetByID(context.Background(), p.ID)
	assert.False(t, stored.Tickets[0].IsUsed)
	assert.Empty(t, f.publisher.Types())
}

func TestScan_Errors(t *testing.T) {
	f := newFixture()
	svc := newTestScanService(f, t0)
	p := f.seed(t, "PlayerOne", "0601020304")

	tests := []struct {
		name  string
		req   dto.ScanRequest
		check func(error) bool
		msg   string
	}{
		{"missing badge", dto.ScanRequest{UserID: p.ID}, domain.IsValidationError, "User ID and badge code are required"},
		{"missing user", dto.ScanRequest{BadgeCode: badge}, domain.IsValidationError, "User ID and badge code are required"},
		{"unknown user", dto.ScanRequest{UserID: "missing", BadgeCode: "bad"}, domain.IsNotFoundError, "participant not found"},
		{"short badge", dto.ScanRequest{UserID: p.ID, BadgeCode: "SHORT", GameZone: "foot"}, domain.IsValidationError, "invalid badge code"},
		{"long badge", dto.ScanRequest{UserID: p.ID, BadgeCode: "ABCDEFGHIJK"}, domain.IsValidationError, "invalid badge code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Scan(context.Background(), &tt.req)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error kind: %v", err)
			assert.Equal(t, tt.msg, err.Error())
		})
	}

	stored, _ := f.repo.GetByID(context.Background(), p.ID)
	assert.False(t, stored.Tickets[0].IsUsed)
}

func TestScan_BadBadgeRejectedRegardlessOfTickets(t *testing.T) {
	f := newFixture()
	p := f.seed(t, "PlayerOne", "0601020304")

	// consume the only ticket
	_, err := newTestScanService(f, t0).Scan(context.Background(), &dto.ScanRequest{UserID: p.ID, BadgeCode: badge, GameZone: "foot"})
	require.NoError(t, err)

	fresh := f.seed(t, "PlayerTwo", "0601020305")

	tests := []struct {
		name   string
		now    time.Time
		userID string
	}{
		{"ticket used", t0, p.ID},
		{"ticket expired", t0.Add(domain.TicketValidity + time.Hour), fresh.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestScanService(f, tt.now)
			_, err := svc.Scan(context.Background(), &dto.ScanRequest{UserID: tt.userID, BadgeCode: "SHORT", GameZone: "foot"})
			require.Error(t, err)
			assert.True(t, domain.IsValidationError(err), "unexpected error kind: %v", err)
			assert.Equal(t, "invalid badge code", err.Error())
		})
	}

	stored, _ := f.repo.GetByID(context.Background(), fresh.ID)
	assert.False(t, stored.Tickets[0].IsUsed)
}

func TestScan_ConcurrentScansConsumeOneTicket(t *testing.T) {
	f := newFixture()
	svc := newTestScanService(f, t0)
	p := f.seed(t, "PlayerOne", "0601020304")

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted, forbidden := 0, 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Scan(context.Background(), &dto.ScanRequest{UserID: p.ID, BadgeCode: badge, GameZone: "foot"})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				granted++
			} else if domain.IsForbiddenError(err) {
				forbidden++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, granted)
	assert.Equal(t, 9, forbidden)
}
