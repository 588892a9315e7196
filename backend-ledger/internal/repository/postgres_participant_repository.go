package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/AlTattoo/top-challenges/backend-ledger/internal/domain"
	"github.com/AlTattoo/top-challenges/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error code for unique violation
const pgUniqueViolationCode = "23505"

// Schema is the DDL of the participant tables
//
//go:embed schema.sql
var Schema string

// PostgresParticipantRepository implements ParticipantRepository using PostgreSQL.
// The aggregate is split over one row per participant and one table per
// collection; collection order is the insertion sequence.
type PostgresParticipantRepository struct {
	db *database.PostgresDB
}

// NewPostgresParticipantRepository creates a new PostgreSQL participant repository
func NewPostgresParticipantRepository(db *database.PostgresDB) *PostgresParticipantRepository {
	return &PostgresParticipantRepository{db: db}
}

// EnsureSchema creates the tables if they are missing
func (r *PostgresParticipantRepository) EnsureSchema(ctx context.Context) error {
	return r.db.ApplySchema(ctx, Schema)
}

// Create inserts the participant and its tickets in one transaction
func (r *PostgresParticipantRepository) Create(ctx context.Context, participant *domain.Participant) error {
	tx, err := r.db.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO participants (id, pseudo, phone_number, profile_picture, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		participant.ID,
		participant.Pseudo,
		participant.PhoneNumber,
		participant.ProfilePicture,
		participant.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			return domain.ErrParticipantExists
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}

	for _, t := range participant.Tickets {
		if err := insertTicket(ctx, tx, participant.ID, t); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit participant: %w", err)
	}
	return nil
}

func insertTicket(ctx context.Context, tx pgx.Tx, participantID string, t domain.Ticket) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO participant_tickets (id, participant_id, issue_date, expiry_date, is_used, used_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, participantID, t.IssueDate, t.ExpiryDate, t.IsUsed, t.UsedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ticket: %w", err)
	}
	return nil
}

// GetByID loads the full aggregate
func (r *PostgresParticipantRepository) GetByID(ctx context.Context, id string) (*domain.Participant, error) {
	row := r.db.Pool().QueryRow(ctx, `
		SELECT id, pseudo, phone_number, profile_picture, created_at
		FROM participants WHERE id = $1`, id)
	return r.load(ctx, row)
}

// FindByPseudoOrPhone loads any participant holding pseudo or phoneNumber
func (r *PostgresParticipantRepository) FindByPseudoOrPhone(ctx context.Context, pseudo, phoneNumber string) (*domain.Participant, error) {
	row := r.db.Pool().QueryRow(ctx, `
		SELECT id, pseudo, phone_number, profile_picture, created_at
		FROM participants WHERE pseudo = $1 OR phone_number = $2
		ORDER BY created_at LIMIT 1`, pseudo, phoneNumber)
	return r.load(ctx, row)
}

// Exists reports whether the participant exists
func (r *PostgresParticipantRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.Pool().QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM participants WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check participant: %w", err)
	}
	return exists, nil
}

// ConsumeTicket flips is_used only while the ticket is unused and unexpired,
// so concurrent scans cannot both win the same ticket
func (r *PostgresParticipantRepository) ConsumeTicket(ctx context.Context, participantID, ticketID string, now time.Time) error {
	result, err := r.db.Pool().Exec(ctx, `
		UPDATE participant_tickets
		SET is_used = TRUE, used_at = $3
		WHERE id = $1 AND participant_id = $2 AND is_used = FALSE AND expiry_date > $3`,
		ticketID, participantID, now,
	)
	if err != nil {
		return fmt.Errorf("failed to consume ticket: %w", err)
	}
	if result.RowsAffected() == 1 {
		return nil
	}
	if err := r.ensureExists(ctx, participantID); err != nil {
		return err
	}
	return ErrTicketUnavailable
}

// AppendScore appends a score entry
func (r *PostgresParticipantRepository) AppendScore(ctx context.Context, participantID string, score domain.ScoreEntry) error {
	if err := r.ensureExists(ctx, participantID); err != nil {
		return err
	}
	_, err := r.db.Pool().Exec(ctx, `
		INSERT INTO participant_scores (id, participant_id, game_zone, score, location, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		score.ID, participantID, score.GameZone, score.Score, score.Location, score.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to append score: %w", err)
	}
	return nil
}

// UpdateChallenges stores progress and completion of the given challenges
func (r *PostgresParticipantRepository) UpdateChallenges(ctx context.Context, participantID string, challenges []domain.Challenge) error {
	if err := r.ensureExists(ctx, participantID); err != nil {
		return err
	}
	if len(challenges) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, ch := range challenges {
		batch.Queue(`
			UPDATE participant_challenges
			SET progress = $3, completed = completed OR $4
			WHERE id = $1 AND participant_id = $2`,
			ch.ID, participantID, ch.Progress, ch.Completed,
		)
	}
	if err := r.db.Pool().SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to update challenges: %w", err)
	}
	return nil
}

// AddChallenge appends a challenge
func (r *PostgresParticipantRepository) AddChallenge(ctx context.Context, participantID string, ch domain.Challenge) error {
	if err := r.ensureExists(ctx, participantID); err != nil {
		return err
	}
	_, err := r.db.Pool().Exec(ctx, `
		INSERT INTO participant_challenges (
			id, participant_id, title, description, reward, progress, target,
			completed, expiry_date, assigned_at, reward_claimed, claimed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		ch.ID, participantID, ch.Title, ch.Description, ch.Reward, ch.Progress, ch.Target,
		ch.Completed, ch.ExpiryDate, ch.AssignedAt, ch.RewardClaimed, ch.ClaimedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add challenge: %w", err)
	}
	return nil
}

// ClaimChallengeReward marks the reward of a completed challenge claimed
func (r *PostgresParticipantRepository) ClaimChallengeReward(ctx context.Context, participantID, challengeID string, at time.Time) error {
	result, err := r.db.Pool().Exec(ctx, `
		UPDATE participant_challenges
		SET reward_claimed = TRUE, claimed_at = $3
		WHERE id = $1 AND participant_id = $2 AND completed = TRUE AND reward_claimed = FALSE`,
		challengeID, participantID, at,
	)
	if err != nil {
		return fmt.Errorf("failed to claim reward: %w", err)
	}
	if result.RowsAffected() == 1 {
		return nil
	}

	if err := r.ensureExists(ctx, participantID); err != nil {
		return err
	}
	var completed, claimed bool
	err = r.db.Pool().QueryRow(ctx, `
		SELECT completed, reward_claimed FROM participant_challenges
		WHERE id = $1 AND participant_id = $2`, challengeID, participantID).Scan(&completed, &claimed)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrChallengeNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read challenge: %w", err)
	}
	if claimed {
		return domain.ErrRewardAlreadyClaimed
	}
	return domain.ErrChallengeNotCompleted
}

// AppendSanction appends a sanction
func (r *PostgresParticipantRepository) AppendSanction(ctx context.Context, participantID string, sanction domain.Sanction) error {
	if err := r.ensureExists(ctx, participantID); err != nil {
		return err
	}
	_, err := r.db.Pool().Exec(ctx, `
		INSERT INTO participant_sanctions (id, participant_id, reason, admin_id, issued_at)
		VALUES ($1, $2, $3, $4, $5)`,
		sanction.ID, participantID, sanction.Reason, sanction.AdminID, sanction.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to append sanction: %w", err)
	}
	return nil
}

// HealthCheck pings the pool
func (r *PostgresParticipantRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

func (r *PostgresParticipantRepository) ensureExists(ctx context.Context, participantID string) error {
	exists, err := r.Exists(ctx, participantID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrParticipantNotFound
	}
	return nil
}

// load scans the participant row and reads its collections
func (r *PostgresParticipantRepository) load(ctx context.Context, row pgx.Row) (*domain.Participant, error) {
	p := &domain.Participant{}
	err := row.Scan(&p.ID, &p.Pseudo, &p.PhoneNumber, &p.ProfilePicture, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan participant: %w", err)
	}

	if p.Tickets, err = r.loadTickets(ctx, p.ID); err != nil {
		return nil, err
	}
	if p.Scores, err = r.loadScores(ctx, p.ID); err != nil {
		return nil, err
	}
	if p.Challenges, err = r.loadChallenges(ctx, p.ID); err != nil {
		return nil, err
	}
	if p.Sanctions, err = r.loadSanctions(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresParticipantRepository) loadTickets(ctx context.Context, participantID string) ([]domain.Ticket, error) {
	rows, err := r.db.Pool().Query(ctx, `
		SELECT id, issue_date, expiry_date, is_used, used_at
		FROM participant_tickets WHERE participant_id = $1 ORDER BY seq`, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}
	defer rows.Close()

	tickets := []domain.Ticket{}
	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(&t.ID, &t.IssueDate, &t.ExpiryDate, &t.IsUsed, &t.UsedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (r *PostgresParticipantRepository) loadScores(ctx context.Context, participantID string) ([]domain.ScoreEntry, error) {
	rows, err := r.db.Pool().Query(ctx, `
		SELECT id, game_zone, score, location, recorded_at
		FROM participant_scores WHERE participant_id = $1 ORDER BY seq`, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	scores := []domain.ScoreEntry{}
	for rows.Next() {
		var s domain.ScoreEntry
		if err := rows.Scan(&s.ID, &s.GameZone, &s.Score, &s.Location, &s.Date); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

func (r *PostgresParticipantRepository) loadChallenges(ctx context.Context, participantID string) ([]domain.Challenge, error) {
	rows, err := r.db.Pool().Query(ctx, `
		SELECT id, title, description, reward, progress, target, completed,
			expiry_date, assigned_at, reward_claimed, claimed_at
		FROM participant_challenges WHERE participant_id = $1 ORDER BY seq`, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query challenges: %w", err)
	}
	defer rows.Close()

	challenges := []domain.Challenge{}
	for rows.Next() {
		var ch domain.Challenge
		err := rows.Scan(
			&ch.ID, &ch.Title, &ch.Description, &ch.Reward, &ch.Progress, &ch.Target, &ch.Completed,
			&ch.ExpiryDate, &ch.AssignedAt, &ch.RewardClaimed, &ch.ClaimedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		challenges = append(challenges, ch)
	}
	return challenges, rows.Err()
}

func (r *PostgresParticipantRepository) loadSanctions(ctx context.Context, participantID string) ([]domain.Sanction, error) {
	rows, err := r.db.Pool().Query(ctx, `
		SELECT id, reason, admin_id, issued_at
		FROM participant_sanctions WHERE participant_id = $1 ORDER BY seq`, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sanctions: %w", err)
	}
	defer rows.Close()

	sanctions := []domain.Sanction{}
	for rows.Next() {
		var s domain.Sanction
		if err := rows.Scan(&s.ID, &s.Reason, &s.AdminID, &s.Date); err != nil {
			return nil, fmt.Errorf("failed to scan sanction: %w", err)
		}
		sanctions = append(sanctions, s)
	}
	return sanctions, rows.Err()
}
