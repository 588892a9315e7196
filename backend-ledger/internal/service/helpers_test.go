package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/AlTattoo/top-challenges/backend-ledger/internal/domain"
	"github.com/AlTattoo/top-challenges/backend-ledger/internal/repository"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu         sync.Mutex
	events     []*domain.LedgerEvent
	publishErr error
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Publish(ctx context.Context, event *domain.LedgerEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishErr != nil {
		return m.publishErr
	}
	m.events = append(m.events, event)
	return nil
}

func (m *MockEventPublisher) Close() error { return nil }

func (m *MockEventPublisher) Types() []domain.LedgerEventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.LedgerEventType{}
	for _, e := range m.events {
		out = append(out, e.EventType)
	}
	return out
}

// MockLeaderboard is a testify mock of LeaderboardRepository
type MockLeaderboard struct {
	mock.Mock
}

func (m *MockLeaderboard) Submit(ctx context.Context, score repository.LeaderboardScore) error {
	return m.Called(ctx, score).Error(0)
}

func (m *MockLeaderboard) TopLocal(ctx context.Context, zone, location string, n int) ([]domain.RankingEntry, error) {
	args := m.Called(ctx, zone, location, n)
	entries, _ := args.Get(0).([]domain.RankingEntry)
	return entries, args.Error(1)
}

func (m *MockLeaderboard) SeasonStanding(ctx context.Context, season, zone, participantID string) (*domain.SeasonStanding, error) {
	args := m.Called(ctx, season, zone, participantID)
	standing, _ := args.Get(0).(*domain.SeasonStanding)
	return standing, args.Error(1)
}

// failingRepository wraps the memory repository and fails selected writes
type failingRepository struct {
	*repository.MemoryParticipantRepository
	updateChallengesErr error
}

func (r *failingRepository) UpdateChallenges(ctx context.Context, participantID string, challenges []domain.Challenge) error {
	if r.updateChallengesErr != nil {
		return r.updateChallengesErr
	}
	return r.MemoryParticipantRepository.UpdateChallenges(ctx, participantID, challenges)
}

type fixture struct {
	repo      *repository.MemoryParticipantRepository
	locker    *repository.MemoryParticipantLocker
	publisher *MockEventPublisher
}

func newFixture() *fixture {
	return &fixture{
		repo:      repository.NewMemoryParticipantRepository(),
		locker:    repository.NewMemoryParticipantLocker(time.Second),
		publisher: NewMockEventPublisher(),
	}
}

func (f *fixture) seed(t *testing.T, pseudo, phone string) *domain.Participant {
	t.Helper()
	p := domain.NewParticipant(pseudo, phone, nil, t0)
	require.NoError(t, f.repo.Create(context.Background(), p))
	return p
}

func (f *fixture) addChallenge(t *testing.T, participantID, title string, target float64) domain.Challenge {
	t.Helper()
	ch := domain.NewChallenge(title, "desc", "reward", target, t0.Add(48*time.Hour), t0)
	require.NoError(t, f.repo.AddChallenge(context.Background(), participantID, ch))
	return ch
}

func ptr[T any](v T) *T { return &v }
