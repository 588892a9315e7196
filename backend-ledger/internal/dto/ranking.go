package dto

import "github.com/AlTattoo/top-challenges/backend-ledger/internal/domain"

// RankingQuery represents the query of GET /rankings
type RankingQuery struct {
	GameZone string `form:"gameZone"`
	Location string `form:"location"`
	UserID   string `form:"userId"`
	Limit    int    `form:"limit"`
}

// Validate validates the RankingQuery
func (q *RankingQuery) Validate() (bool, string) {
	if q.GameZone == "" {
		return false, "Game zone is required"
	}
	if !domain.IsValidGameZone(q.GameZone) {
		return false, "Game zone must be one of foot, basket, tir, petanque, minigolf"
	}
	if q.Limit < 0 || q.Limit > 100 {
		return false, "Limit must be between 1 and 100"
	}
	return true, ""
}

// LocalRankingEntry is a line of a zone+location board
type LocalRankingEntry struct {
	domain.RankingEntry
	Location string `json:"location"`
	GameZone string `json:"gameZone"`
}

// RankingsResponse represents the response of GET /rankings
type RankingsResponse struct {
	Local    []LocalRankingEntry    `json:"local"`
	Seasonal *domain.SeasonStanding `json:"seasonal"`
}
