package dto

import (
	"time"

	"github.com/AlTattoo/top-challenges/backend-ledger/internal/domain"
)

// AssignChallengeRequest represents a challenge attached to a participant
type AssignChallengeRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Reward      string     `json:"reward"`
	Target      float64    `json:"target"`
	ExpiryDate  *time.Time `json:"expiryDate"`
}

// Validate validates the AssignChallengeRequest
func (r *AssignChallengeRequest) Validate() (bool, string) {
	if r.Title == "" || r.Description == "" || r.Reward == "" {
		return false, "Title, description, and reward are required"
	}
	if r.Target <= 0 {
		return false, "Target must be greater than 0"
	}
	if r.ExpiryDate == nil || r.ExpiryDate.IsZero() {
		return false, "Expiry date is required"
	}
	return true, ""
}

// ChallengeListResponse lists a participant's challenges
type ChallengeListResponse struct {
	Challenges []domain.Challenge `json:"challenges"`
}

// ReconcileResponse lists the challenges raised by a replay
type ReconcileResponse struct {
	UpdatedChallenges []domain.Challenge `json:"updatedChallenges"`
}
