package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AlTattoo/top-challenges/backend-ledger/internal/domain"
	"github.com/AlTattoo/top-challenges/backend-ledger/internal/dto"
	"github.com/AlTattoo/top-challenges/backend-ledger/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestScoreService(repo repository.ParticipantRepository, f *fixture, leaderboard repository.LeaderboardRepository, now time.Time) *scoreService {
	svc := NewScoreService(repo, f.locker, leaderboard, f.publisher, &ScoreServiceConfig{Season: "2026"}).(*scoreService)
	svc.now = fixedClock(now)
	return svc
}

func scoreReq(userID, zone string, score float64) *dto.RecordScoreRequest {
	return &dto.RecordScoreRequest{UserID: userID, GameZone: zone, Score: ptr(score), Location: "Gonfreville"}
}

func TestRecordScore_ChallengeProgression(t *testing.T) {
	f := newFixture()
	svc := newTestScoreService(f.repo, f, nil, t0)
	p := f.seed(t, "PlayerOne", "0601020304")
	footCh := f.addChallenge(t, p.ID, "Foot Master", 100)
	f.addChallenge(t, p.ID, "Basket star", 50)

	res, err := svc.RecordScore(context.Background(), scoreReq(p.ID, "foot", 80))
	require.NoError(t, err)
	assert.Equal(t, "Score recorded successfully", res.Message)
	assert.Equal(t, 80.0, res.NewScore.Score)
	require.Len(t, res.UpdatedChallenges, 1)
	assert.Equal(t, footCh.ID, res.UpdatedChallenges[0].ID)
	assert.Equal(t, 80.0, res.UpdatedChallenges[0].Progress)
	assert.False(t, res.UpdatedChallenges[0].Completed)

	res, err = svc.RecordScore(context.Background(), scoreReq(p.ID, "foot", 40))
	require.NoError(t, err)
	require.Len(t, res.UpdatedChallenges, 1)
	assert.Equal(t, 120.0, res.UpdatedChallenges[0].Progress)
	assert.True(t, res.UpdatedChallenges[0].Completed)

	stored, _ := f.repo.GetByID(context.Background(), p.ID)
	assert.Len(t, stored.Scores, 2)
	assert.Equal(t, 120.0, stored.Challenges[0].Progress)
	assert.True(t, stored.Challenges[0].Completed)
	assert.Zero(t, stored.Challenges[1].Progress)

	assert.Equal(t, []domain.LedgerEventType{
		domain.EventScoreRecorded,
		domain.EventScoreRecorded,
		domain.EventChallengeCompleted,
	}, f.publisher.Types())
}

func TestRecordScore_NoMatchingChallenge(t *testing.T) {
	f := newFixture()
	svc := newTestScoreService(f.repo, f, nil, t0)
	p := f.seed(t, "PlayerOne", "0601020304")
	f.addChallenge(t, p.ID, "Minigolf ace", 10)

	res, err := svc.RecordScore(context.Background(), scoreReq(p.ID, "petanque", 0))
	require.NoError(t, err)
	assert.NotNil(t, res.UpdatedChallenges)
	assert.Empty(t, res.UpdatedChallenges)
}

func TestRecordScore_Errors(t *testing.T) {
	f := newFixture()
	svc := newTestScoreService(f.repo, f, nil, t0)

	_, err := svc.RecordScore(context.Background(), &dto.RecordScoreRequest{UserID: "u", GameZone: "foot", Location: "x"})
	assert.True(t, domain.IsValidationError(err))
	assert.Equal(t, "User ID, game zone, score, and location are required", err.Error())

	_, err = svc.RecordScore(context.Background(), scoreReq("missing", "foot", 10))
	assert.True(t, domain.IsNotFoundError(err))
}

func TestRecordScore_NegativeScoreLowersProgress(t *testing.T) {
	f := newFixture()
	svc := newTestScoreService(f.repo, f, nil, t0)
	p := f.seed(t, "PlayerOne", "0601020304")
	f.addChallenge(t, p.ID, "Foot Master", 100)

	_, err := svc.RecordScore(context.Background(), scoreReq(p.ID, "foot", 30))
	require.NoError(t, err)

	res, err := svc.RecordScore(context.Background(), scoreReq(p.ID, "foot", -5))
	require.NoError(t, err)
	assert.Equal(t, -5.0, res.NewScore.Score)
	require.Len(t, res.UpdatedChallenges, 1)
	assert.Equal(t, 25.0, res.UpdatedChallenges[0].Progress)
	assert.False(t, res.UpdatedChallenges[0].Completed)

	stored, _ := f.repo.GetByID(context.Background(), p.ID)
	require.Len(t, stored.Scores, 2)
	assert.Equal(t, -5.0, stored.Scores[1].Score)
	assert.Equal(t, 25.0, stored.Challenges[0].Progress)
}

func TestRecordScore_SubmitsToLeaderboard(t *testing.T) {
	f := newFixture()
	p := f.seed(t, "PlayerOne", "0601020304")

	lb := new(MockLeaderboard)
	lb.On("Submit", mock.Anything, repository.LeaderboardScore{
		ParticipantID: p.ID,
		Pseudo:        "PlayerOne",
		GameZone:      "tir",
		Location:      "Gonfreville",
		Season:        "2026",
		Score:         12,
	}).Return(nil).Once()

	svc := newTestScoreService(f.repo, f, lb, t0)
	_, err := svc.RecordScore(context.Background(), scoreReq(p.ID, "tir", 12))
	require.NoError(t, err)
	lb.AssertExpectations(t)
}

func TestRecordScore_LeaderboardFailureIsIgnored(t *testing.T) {
	f := newFixture()
	p := f.seed(t, "PlayerOne", "0601020304")

	lb := new(MockLeaderboard)
	lb.On("Submit", mock.Anything, mock.Anything).Return(errors.New("redis down"))

	svc := newTestScoreService(f.repo, f, lb, t0)
	_, err := svc.RecordScore(context.Background(), scoreReq(p.ID, "tir", 12))
	require.NoError(t, err)
}

func TestRecordScore_EventFailureIsIgnored(t *testing.T) {
	f := newFixture()
	f.publisher.publishErr = errors.New("kafka down")
	p := f.seed(t, "PlayerOne", "0601020304")

	svc := newTestScoreService(f.repo, f, nil, t0)
	_, err := svc.RecordScore(context.Background(), scoreReq(p.ID, "tir", 12))
	require.NoError(t, err)
}

func TestRecordScore_SecondPhaseFailureKeepsScore(t *testing.T) {
	f := newFixture()
	repo := &failingRepository{MemoryParticipantRepository: f.repo, updateChallengesErr: errors.New("write failed")}
	svc := newTestScoreService(repo, f, nil, t0)
	p := f.seed(t, "PlayerOne", "0601020304")
	f.addChallenge(t, p.ID, "Foot Master", 100)

	_, err := svc.RecordScore(context.Background(), scoreReq(p.ID, "foot", 80))
	require.Error(t, err)
	assert.False(t, domain.IsValidationError(err) || domain.IsNotFoundError(err))

	stored, _ := f.repo.GetByID(context.Background(), p.ID)
	assert.Len(t, stored.Scores, 1, "phase one is durable")
	assert.Zero(t, stored.Challenges[0].Progress)
}

func TestGetScores_FiltersAndOrders(t *testing.T) {
	f := newFixture()
	p := f.seed(t, "PlayerOne", "0601020304")

	at := t0
	svc := NewScoreService(f.repo, f.locker, nil, f.publisher, nil).(*scoreService)
	svc.now = func() time.Time { return at }

	record := func(zone, location string, score float64) {
		_, err := svc.RecordScore(context.Background(), &dto.RecordScoreRequest{UserID: p.ID, GameZone: zone, Score: ptr(score), Location: location})
		require.NoError(t, err)
		at = at.Add(time.Minute)
	}
	record("foot", "Gonfreville", 1)
	record("foot", "Le Havre", 2)
	record("tir", "Gonfreville", 3)
	record("foot", "Gonfreville", 4)

	scores, err := svc.GetScores(context.Background(), &dto.ScoreFilter{UserID: p.ID, GameZone: "foot", Location: "Gonfreville"})
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, 4.0, scores[0].Score)
	assert.Equal(t, 1.0, scores[1].Score)

	all, err := svc.GetScores(context.Background(), &dto.ScoreFilter{UserID: p.ID})
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].Date.After(all[i-1].Date))
	}

	again, err := svc.GetScores(context.Background(), &dto.ScoreFilter{UserID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, all, again, "unchanged history reads back identically")

	_, err = svc.GetScores(context.Background(), &dto.ScoreFilter{})
	assert.True(t, domain.IsValidationError(err))
	_, err = svc.GetScores(context.Background(), &dto.ScoreFilter{UserID: "missing"})
	assert.True(t, domain.IsNotFoundError(err))
}
