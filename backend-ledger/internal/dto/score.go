package dto

import "github.com/AlTattoo/top-challenges/backend-ledger/internal/domain"

// RecordScoreRequest represents a score posted by a game station
type RecordScoreRequest struct {
	UserID   string   `json:"userId"`
	GameZone string   `json:"gameZone"`
	Score    *float64 `json:"score"`
	Location string   `json:"location"`
}

// Validate validates the RecordScoreRequest
func (r *RecordScoreRequest) Validate() (bool, string) {
	if r.UserID == "" || r.GameZone == "" || r.Score == nil || r.Location == "" {
		return false, "User ID, game zone, score, and location are required"
	}
	if !domain.IsValidGameZone(r.GameZone) {
		return false, "Game zone must be one of foot, basket, tir, petanque, minigolf"
	}
	return true, ""
}

// RecordScoreResult is the outcome of a recorded score
type RecordScoreResult struct {
	Message           string             `json:"message"`
	NewScore          domain.ScoreEntry  `json:"newScore"`
	UpdatedChallenges []domain.Challenge `json:"updatedChallenges"`
}

// ScoreFilter represents the query of GET /scores
type ScoreFilter struct {
	UserID   string `form:"userId"`
	GameZone string `form:"gameZone"`
	Location string `form:"location"`
}

// Validate validates the ScoreFilter
func (f *ScoreFilter) Validate() (bool, string) {
	if f.UserID == "" {
		return false, "User ID is required"
	}
	return true, ""
}

// ScoreListResponse represents a filtered score history
type ScoreListResponse struct {
	Scores []domain.ScoreEntry `json:"scores"`
}
