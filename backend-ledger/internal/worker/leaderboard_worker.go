package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AlTattoo/top-challenges/backend-ledger/internal/domain"
	"github.com/AlTattoo/top-challenges/backend-ledger/internal/repository"
	"github.com/AlTattoo/top-challenges/pkg/kafka"
	"github.com/AlTattoo/top-challenges/pkg/logger"
	"go.uber.org/zap"
)

// RecordSource is the subset of the Kafka consumer used by the worker
type RecordSource interface {
	Poll(ctx context.Context) ([]*kafka.Record, error)
	CommitRecords(ctx context.Context, records []*kafka.Record) error
}

// LeaderboardWorkerConfig holds configuration for the leaderboard worker
type LeaderboardWorkerConfig struct {
	// Season is used for events that do not name one
	Season string
	// PollBackoff is the pause after a failed poll
	PollBackoff time.Duration
}

// LeaderboardWorker folds score.recorded events into the Redis leaderboards.
// Submitting only ever raises a best score, so redelivered events are harmless
// and the boards can be rebuilt by replaying the topic from the start.
type LeaderboardWorker struct {
	config      *LeaderboardWorkerConfig
	source      RecordSource
	leaderboard repository.LeaderboardRepository
	log         *logger.Logger

	// best score per board entry within one poll
	pending map[string]repository.LeaderboardScore
}

// NewLeaderboardWorker creates a new leaderboard worker
func NewLeaderboardWorker(
	cfg *LeaderboardWorkerConfig,
	source RecordSource,
	leaderboard repository.LeaderboardRepository,
	log *logger.Logger,
) *LeaderboardWorker {
	if cfg == nil {
		cfg = &LeaderboardWorkerConfig{}
	}
	if cfg.Season == "" {
		cfg.Season = "current"
	}
	if cfg.PollBackoff <= 0 {
		cfg.PollBackoff = time.Second
	}
	if log == nil {
		log = logger.Get()
	}

	return &LeaderboardWorker{
		config:      cfg,
		source:      source,
		leaderboard: leaderboard,
		log:         log,
		pending:     make(map[string]repository.LeaderboardScore),
	}
}

// Start consumes until ctx is done
func (w *LeaderboardWorker) Start(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		records, err := w.source.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, kafka.ErrConsumerClosed) {
				return
			}
			w.log.Error("Failed to poll Kafka", zap.Error(err))
			if len(records) == 0 {
				w.sleep(ctx)
				continue
			}
		}
		if len(records) == 0 {
			continue
		}

		if err := w.HandleRecords(ctx, records); err != nil {
			// Offsets stay uncommitted so the batch is redelivered
			w.log.Error("Failed to update leaderboards", zap.Error(err))
			w.sleep(ctx)
			continue
		}

		if err := w.source.CommitRecords(ctx, records); err != nil {
			w.log.Error("Failed to commit offsets", zap.Error(err))
		}
	}
}

// HandleRecords decodes a batch and submits the best score of each board entry.
// Undecodable records are logged and skipped.
func (w *LeaderboardWorker) HandleRecords(ctx context.Context, records []*kafka.Record) error {
	for _, record := range records {
		if err := w.processRecord(record); err != nil {
			w.log.Warn("Skipping ledger event",
				zap.String("topic", record.Topic),
				zap.Int64("offset", record.Offset),
				zap.Error(err),
			)
		}
	}
	return w.flush(ctx)
}

type scoreRecordedEvent struct {
	EventType     domain.LedgerEventType      `json:"event_type"`
	ParticipantID string                      `json:"participant_id"`
	Payload       domain.ScoreRecordedPayload `json:"payload"`
}

// processRecord aggregates one score.recorded event; other event types are ignored
func (w *LeaderboardWorker) processRecord(record *kafka.Record) error {
	var header struct {
		EventType domain.LedgerEventType `json:"event_type"`
	}
	if err := json.Unmarshal(record.Value, &header); err != nil {
		return fmt.Errorf("failed to unmarshal ledger event: %w", err)
	}
	if header.EventType != domain.EventScoreRecorded {
		return nil
	}

	var event scoreRecordedEvent
	if err := json.Unmarshal(record.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal score event: %w", err)
	}
	if event.ParticipantID == "" || !domain.IsValidGameZone(event.Payload.GameZone) {
		return fmt.Errorf("score event is incomplete")
	}

	season := event.Payload.Season
	if season == "" {
		season = w.config.Season
	}
	w.aggregate(repository.LeaderboardScore{
		ParticipantID: event.ParticipantID,
		Pseudo:        event.Payload.Pseudo,
		GameZone:      event.Payload.GameZone,
		Location:      event.Payload.Location,
		Season:        season,
		Score:         event.Payload.Score,
	})
	return nil
}

// aggregate keeps the highest score per participant and board
func (w *LeaderboardWorker) aggregate(score repository.LeaderboardScore) {
	key := fmt.Sprintf("%s|%s|%s|%s", score.ParticipantID, score.GameZone, score.Location, score.Season)
	if existing, ok := w.pending[key]; ok && existing.Score >= score.Score {
		return
	}
	w.pending[key] = score
}

// flush submits pending scores; those that failed stay pending
func (w *LeaderboardWorker) flush(ctx context.Context) error {
	var errs []error
	for key, score := range w.pending {
		if err := w.leaderboard.Submit(ctx, score); err != nil {
			errs = append(errs, fmt.Errorf("participant %s: %w", score.ParticipantID, err))
			continue
		}
		delete(w.pending, key)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// PendingCount returns the number of scores not yet submitted
func (w *LeaderboardWorker) PendingCount() int {
	return len(w.pending)
}

func (w *LeaderboardWorker) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(w.config.PollBackoff):
	}
}
