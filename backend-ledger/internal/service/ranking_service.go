package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlTattoo/top-challenges/backend-ledger/internal/domain"
	"github.com/AlTattoo/top-challenges/backend-ledger/internal/dto"
	"github.com/AlTattoo/top-challenges/backend-ledger/internal/repository"
	"github.com/AlTattoo/top-challenges/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"
)

// ErrRankingsUnavailable is returned when the leaderboard store is not configured or not answering
var ErrRankingsUnavailable = errors.New("rankings are unavailable")

// rankingService implements RankingService
type rankingService struct {
	leaderboard repository.LeaderboardRepository
	season      string
	topN        int
	sfGroup     singleflight.Group
}

// RankingServiceConfig contains configuration for ranking service
type RankingServiceConfig struct {
	Season string
	TopN   int
}

// NewRankingService creates a new ranking service. leaderboard may be nil when Redis is unavailable.
func NewRankingService(leaderboard repository.LeaderboardRepository, cfg *RankingServiceConfig) RankingService {
	season := "current"
	topN := 10
	if cfg != nil {
		if cfg.Season != "" {
			season = cfg.Season
		}
		if cfg.TopN > 0 {
			topN = cfg.TopN
		}
	}
	return &rankingService{
		leaderboard: leaderboard,
		season:      season,
		topN:        topN,
	}
}

// GetRankings returns the local board when a location is given and the
// participant's season standing when a participant is given.
// Identical concurrent queries share one read.
func (s *rankingService) GetRankings(ctx context.Context, query *dto.RankingQuery) (*dto.RankingsResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ranking.get")
	defer span.End()

	if valid, msg := query.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		return nil, domain.NewValidationError(msg)
	}
	if s.leaderboard == nil {
		span.SetStatus(codes.Error, ErrRankingsUnavailable.Error())
		return nil, ErrRankingsUnavailable
	}

	limit := query.Limit
	if limit <= 0 {
		limit = s.topN
	}

	span.SetAttributes(
		attribute.String("game_zone", query.GameZone),
		attribute.String("location", query.Location),
		attribute.Int("limit", limit),
	)

	key := fmt.Sprintf("%s|%s|%s|%d", query.GameZone, query.Location, query.UserID, limit)
	// The shared read must not die with whichever caller happened to start it
	sharedCtx := context.WithoutCancel(ctx)
	v, err, shared := s.sfGroup.Do(key, func() (interface{}, error) {
		return s.readRankings(sharedCtx, query, limit)
	})
	span.SetAttributes(attribute.Bool("shared", shared))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return v.(*dto.RankingsResponse), nil
}

func (s *rankingService) readRankings(ctx context.Context, query *dto.RankingQuery, limit int) (*dto.RankingsResponse, error) {
	resp := &dto.RankingsResponse{Local: []dto.LocalRankingEntry{}}

	if query.Location != "" {
		entries, err := s.leaderboard.TopLocal(ctx, query.GameZone, query.Location, limit)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRankingsUnavailable, err)
		}
		for _, e := range entries {
			resp.Local = append(resp.Local, dto.LocalRankingEntry{
				RankingEntry: e,
				Location:     query.Location,
				GameZone:     query.GameZone,
			})
		}
	}

	if query.UserID != "" {
		standing, err := s.leaderboard.SeasonStanding(ctx, s.season, query.GameZone, query.UserID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRankingsUnavailable, err)
		}
		resp.Seasonal = standing
	}

	return resp, nil
}
