package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"

	"github.com/AlTattoo/top-challenges/backend-ledger/internal/domain"
	pkgredis "github.com/AlTattoo/top-challenges/pkg/redis"
	"github.com/AlTattoo/top-challenges/pkg/telemetry"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

//go:embed scripts/submit_best_score.lua
var submitBestScoreScript string

const scriptSubmitBestScore = "submit_best_score"

// pseudosKey maps participant ids to the pseudo shown on the boards
const pseudosKey = "leaderboard:pseudos"

// LocalBoardKey is the sorted set of best scores for one zone at one location
func LocalBoardKey(zone, location string) string {
	return fmt.Sprintf("leaderboard:local:%s:%s", zone, location)
}

// SeasonBoardKey is the sorted set of best scores for one zone over a season
func SeasonBoardKey(season, zone string) string {
	return fmt.Sprintf("leaderboard:season:%s:%s", season, zone)
}

// RedisLeaderboardRepository implements LeaderboardRepository using Redis sorted sets
type RedisLeaderboardRepository struct {
	client *pkgredis.Client
}

// NewRedisLeaderboardRepository creates a new RedisLeaderboardRepository
func NewRedisLeaderboardRepository(client *pkgredis.Client) *RedisLeaderboardRepository {
	return &RedisLeaderboardRepository{client: client}
}

// LoadScripts loads the Lua scripts into Redis
func (r *RedisLeaderboardRepository) LoadScripts(ctx context.Context) error {
	if _, err := r.client.LoadScript(ctx, scriptSubmitBestScore, submitBestScoreScript); err != nil {
		return fmt.Errorf("failed to load script %s: %w", scriptSubmitBestScore, err)
	}
	return nil
}

// Submit raises the participant's best score on both boards
func (r *RedisLeaderboardRepository) Submit(ctx context.Context, score LeaderboardScore) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.leaderboard.submit")
	defer span.End()

	span.SetAttributes(
		attribute.String("participant_id", score.ParticipantID),
		attribute.String("game_zone", score.GameZone),
		attribute.String("location", score.Location),
	)

	keys := []string{
		LocalBoardKey(score.GameZone, score.Location),
		SeasonBoardKey(score.Season, score.GameZone),
		pseudosKey,
	}
	args := []interface{}{
		score.ParticipantID,      // ARGV[1]
		formatScore(score.Score), // ARGV[2]
		score.Pseudo,             // ARGV[3]
	}

	if err := r.client.EvalWithFallback(ctx, scriptSubmitBestScore, submitBestScoreScript, keys, args...).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to execute submit_best_score script: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// TopLocal returns the n best entries of the zone+location board
func (r *RedisLeaderboardRepository) TopLocal(ctx context.Context, zone, location string, n int) ([]domain.RankingEntry, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.leaderboard.top_local")
	defer span.End()

	if n <= 0 {
		return []domain.RankingEntry{}, nil
	}

	members, err := r.client.ZRevRangeWithScores(ctx, LocalBoardKey(zone, location), 0, int64(n-1)).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to read local board: %w", err)
	}

	ids := make([]string, len(members))
	for i, m := range members {
		ids[i], _ = m.Member.(string)
	}
	pseudos, err := r.pseudos(ctx, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	entries := make([]domain.RankingEntry, len(members))
	for i, m := range members {
		entries[i] = domain.RankingEntry{
			Rank:          int64(i + 1),
			ParticipantID: ids[i],
			Pseudo:        pseudos[i],
			Score:         m.Score,
		}
	}

	span.SetAttributes(attribute.Int("entries", len(entries)))
	span.SetStatus(codes.Ok, "")
	return entries, nil
}

// SeasonStanding returns the participant's 1-based rank on the season board,
// nil when the participant has no score there
func (r *RedisLeaderboardRepository) SeasonStanding(ctx context.Context, season, zone, participantID string) (*domain.SeasonStanding, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.leaderboard.season_standing")
	defer span.End()

	key := SeasonBoardKey(season, zone)

	pipe := r.client.TxPipeline()
	rankCmd := pipe.ZRevRank(ctx, key, participantID)
	scoreCmd := pipe.ZScore(ctx, key, participantID)
	totalCmd := pipe.ZCard(ctx, key)
	pseudoCmd := pipe.HGet(ctx, pseudosKey, participantID)
	_, err := pipe.Exec(ctx)
	if err != nil && !errors.Is(err, redis.Nil) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to read season board: %w", err)
	}

	rank, err := rankCmd.Result()
	if errors.Is(err, redis.Nil) {
		span.SetStatus(codes.Ok, "unranked")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read season rank: %w", err)
	}

	standing := &domain.SeasonStanding{
		RankingEntry: domain.RankingEntry{
			Rank:          rank + 1,
			ParticipantID: participantID,
			Pseudo:        pseudoCmd.Val(),
			Score:         scoreCmd.Val(),
		},
		TotalPlayers: totalCmd.Val(),
	}

	span.SetAttributes(attribute.Int64("rank", standing.Rank))
	span.SetStatus(codes.Ok, "")
	return standing, nil
}

func (r *RedisLeaderboardRepository) pseudos(ctx context.Context, ids []string) ([]string, error) {
	out := make([]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	values, err := r.client.HMGet(ctx, pseudosKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read pseudos: %w", err)
	}
	for i, v := range values {
		switch s := v.(type) {
		case string:
			out[i] = s
		case nil:
		default:
			out[i] = fmt.Sprint(s)
		}
	}
	return out, nil
}

// formatScore renders a score the way Lua's tonumber reads it back
func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
