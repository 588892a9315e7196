package repository

import (
	"context"
	"sync"
	"time"

	"github.com/AlTattoo/top-challenges/backend-ledger/internal/domain"
)

// MemoryParticipantRepository implements ParticipantRepository using in-memory storage.
// It backs the memory store driver and the service tests.
type MemoryParticipantRepository struct {
	participants map[string]*domain.Participant
	byPseudo     map[string]string // pseudo -> participantID
	byPhone      map[string]string // phoneNumber -> participantID
	mu           sync.RWMutex
}

// NewMemoryParticipantRepository creates a new in-memory participant repository
func NewMemoryParticipantRepository() *MemoryParticipantRepository {
	return &MemoryParticipantRepository{
		participants: make(map[string]*domain.Participant),
		byPseudo:     make(map[string]string),
		byPhone:      make(map[string]string),
	}
}

// Create stores a copy of participant
func (r *MemoryParticipantRepository) Create(ctx context.Context, participant *domain.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byPseudo[participant.Pseudo]; exists {
		return domain.ErrParticipantExists
	}
	if _, exists := r.byPhone[participant.PhoneNumber]; exists {
		return domain.ErrParticipantExists
	}

	r.participants[participant.ID] = participant.Clone()
	r.byPseudo[participant.Pseudo] = participant.ID
	r.byPhone[participant.PhoneNumber] = participant.ID
	return nil
}

// GetByID returns a copy of the participant
func (r *MemoryParticipantRepository) GetByID(ctx context.Context, id string) (*domain.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.participants[id].Clone(), nil
}

// FindByPseudoOrPhone returns a copy of the participant holding pseudo or phoneNumber
func (r *MemoryParticipantRepository) FindByPseudoOrPhone(ctx context.Context, pseudo, phoneNumber string) (*domain.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id, ok := r.byPseudo[pseudo]; ok {
		return r.participants[id].Clone(), nil
	}
	if id, ok := r.byPhone[phoneNumber]; ok {
		return r.participants[id].Clone(), nil
	}
	return nil, nil
}

// Exists reports whether the participant exists
func (r *MemoryParticipantRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.participants[id]
	return ok, nil
}

// ConsumeTicket marks the ticket used if it is still valid at now
func (r *MemoryParticipantRepository) ConsumeTicket(ctx context.Context, participantID, ticketID string, now time.Time) error {
	return r.mutate(participantID, func(p *domain.Participant) error {
		for i := range p.Tickets {
			t := &p.Tickets[i]
			if t.ID != ticketID {
				continue
			}
			if !t.IsValid(now) {
				return ErrTicketUnavailable
			}
			usedAt := now
			t.IsUsed = true
			t.UsedAt = &usedAt
			return nil
		}
		return ErrTicketUnavailable
	})
}

// AppendScore appends a score entry
func (r *MemoryParticipantRepository) AppendScore(ctx context.Context, participantID string, score domain.ScoreEntry) error {
	return r.mutate(participantID, func(p *domain.Participant) error {
		p.Scores = append(p.Scores, score)
		return nil
	})
}

// UpdateChallenges stores progress and completion of the given challenges
func (r *MemoryParticipantRepository) UpdateChallenges(ctx context.Context, participantID string, challenges []domain.Challenge) error {
	return r.mutate(participantID, func(p *domain.Participant) error {
		for _, ch := range challenges {
			if i, ok := p.ChallengeIndex(ch.ID); ok {
				p.Challenges[i].Progress = ch.Progress
				p.Challenges[i].Completed = p.Challenges[i].Completed || ch.Completed
			}
		}
		return nil
	})
}

// AddChallenge appends a challenge
func (r *MemoryParticipantRepository) AddChallenge(ctx context.Context, participantID string, challenge domain.Challenge) error {
	return r.mutate(participantID, func(p *domain.Participant) error {
		p.Challenges = append(p.Challenges, challenge.Clone())
		return nil
	})
}

// ClaimChallengeReward marks the reward of a completed challenge claimed
func (r *MemoryParticipantRepository) ClaimChallengeReward(ctx context.Context, participantID, challengeID string, at time.Time) error {
	return r.mutate(participantID, func(p *domain.Participant) error {
		i, ok := p.ChallengeIndex(challengeID)
		if !ok {
			return domain.ErrChallengeNotFound
		}
		ch := &p.Challenges[i]
		if !ch.Completed {
			return domain.ErrChallengeNotCompleted
		}
		if ch.RewardClaimed {
			return domain.ErrRewardAlreadyClaimed
		}
		claimedAt := at
		ch.RewardClaimed = true
		ch.ClaimedAt = &claimedAt
		return nil
	})
}

// AppendSanction appends a sanction
func (r *MemoryParticipantRepository) AppendSanction(ctx context.Context, participantID string, sanction domain.Sanction) error {
	return r.mutate(participantID, func(p *domain.Participant) error {
		p.Sanctions = append(p.Sanctions, sanction)
		return nil
	})
}

// HealthCheck always succeeds
func (r *MemoryParticipantRepository) HealthCheck(ctx context.Context) error {
	return nil
}

// mutate applies fn to the stored participant under the write lock
func (r *MemoryParticipantRepository) mutate(participantID string, fn func(p *domain.Participant) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[participantID]
	if !ok {
		return domain.ErrParticipantNotFound
	}
	return fn(p)
}
