package repository

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/AlTattoo/top-challenges/backend-ledger/internal/domain"
	"github.com/AlTattoo/top-challenges/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipIfNoIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newPostgresRepository connects to TEST_POSTGRES_* and truncates the participant tables
func newPostgresRepository(t *testing.T) *PostgresParticipantRepository {
	skipIfNoIntegration(t)

	port, _ := strconv.Atoi(envOr("TEST_POSTGRES_PORT", "5432"))
	ctx := context.Background()
	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:           envOr("TEST_POSTGRES_HOST", "localhost"),
		Port:           port,
		User:           envOr("TEST_POSTGRES_USER", "postgres"),
		Password:       envOr("TEST_POSTGRES_PASSWORD", "postgres"),
		Database:       envOr("TEST_POSTGRES_DB", "ledger_test"),
		SSLMode:        "disable",
		MaxConns:       5,
		ConnectTimeout: 5 * time.Second,
		MaxRetries:     1,
		RetryInterval:  time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	repo := NewPostgresParticipantRepository(db)
	require.NoError(t, repo.EnsureSchema(ctx))
	_, err = db.Pool().Exec(ctx, `TRUNCATE participants CASCADE`)
	require.NoError(t, err)
	return repo
}

func TestPostgresParticipantRepository_Lifecycle(t *testing.T) {
	repo := newPostgresRepository(t)
	ctx := context.Background()

	p := domain.NewParticipant("PlayerOne", "0601020304", nil, now)
	require.NoError(t, repo.Create(ctx, p))
	assert.ErrorIs(t, repo.Create(ctx, domain.NewParticipant("PlayerOne", "0700000000", nil, now)), domain.ErrParticipantExists)

	found, err := repo.FindByPseudoOrPhone(ctx, "x", "0601020304")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, p.ID, found.ID)

	ticketID := p.Tickets[0].ID
	require.NoError(t, repo.ConsumeTicket(ctx, p.ID, ticketID, now))
	assert.ErrorIs(t, repo.ConsumeTicket(ctx, p.ID, ticketID, now), ErrTicketUnavailable)
	assert.ErrorIs(t, repo.ConsumeTicket(ctx, "missing", ticketID, now), domain.ErrParticipantNotFound)

	require.NoError(t, repo.AppendScore(ctx, p.ID, domain.NewScoreEntry("foot", 80, "Gonfreville", now)))
	ch := domain.NewChallenge("Foot Master", "", "free game", 50, now.Add(time.Hour), now)
	require.NoError(t, repo.AddChallenge(ctx, p.ID, ch))
	ch.Progress, ch.Completed = 80, true
	require.NoError(t, repo.UpdateChallenges(ctx, p.ID, []domain.Challenge{ch}))
	require.NoError(t, repo.ClaimChallengeReward(ctx, p.ID, ch.ID, now))
	assert.ErrorIs(t, repo.ClaimChallengeReward(ctx, p.ID, ch.ID, now), domain.ErrRewardAlreadyClaimed)
	require.NoError(t, repo.AppendSanction(ctx, p.ID, domain.NewSanction("cheating", p.ID, now)))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Tickets[0].IsUsed)
	require.Len(t, got.Scores, 1)
	require.Len(t, got.Challenges, 1)
	assert.True(t, got.Challenges[0].RewardClaimed)
	require.Len(t, got.Sanctions, 1)

	missing, err := repo.GetByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
