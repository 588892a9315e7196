package domain

import (
	"time"

	"github.com/google/uuid"
)

// LedgerEventType is the kind of a ledger event
type LedgerEventType string

const (
	EventParticipantRegistered LedgerEventType = "participant.registered"
	EventTicketConsumed        LedgerEventType = "ticket.consumed"
	EventScoreRecorded         LedgerEventType = "score.recorded"
	EventChallengeCompleted    LedgerEventType = "challenge.completed"
	EventRewardClaimed         LedgerEventType = "challenge.reward_claimed"
	EventSanctionIssued        LedgerEventType = "sanction.issued"
)

// LedgerEvent is published after a participant's ledger changed
type LedgerEvent struct {
	EventID       string          `json:"event_id"`
	EventType     LedgerEventType `json:"event_type"`
	ParticipantID string          `json:"participant_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       interface{}     `json:"payload,omitempty"`
}

// ScoreRecordedPayload is the payload of score.recorded. It carries what a
// consumer needs to rebuild the leaderboards without reading the store.
type ScoreRecordedPayload struct {
	ScoreEntry
	Pseudo string `json:"pseudo"`
	Season string `json:"season"`
}

// NewLedgerEvent creates an event with a fresh id
func NewLedgerEvent(eventType LedgerEventType, participantID string, payload interface{}, now time.Time) *LedgerEvent {
	return &LedgerEvent{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		ParticipantID: participantID,
		OccurredAt:    now,
		Payload:       payload,
	}
}

// Key is the partition key, so a participant's events stay ordered
func (e *LedgerEvent) Key() string {
	return e.ParticipantID
}
