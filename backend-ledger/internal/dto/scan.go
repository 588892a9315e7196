package dto

import (
	"unicode/utf8"

	"github.com/AlTattoo/top-challenges/backend-ledger/internal/domain"
)

// ScanRequest represents a badge scan at a venue entrance
type ScanRequest struct {
	UserID    string `json:"userId"`
	BadgeCode string `json:"badgeCode"`
	GameZone  string `json:"gameZone"`
}

// Validate checks the required fields
func (r *ScanRequest) Validate() (bool, string) {
	if r.UserID == "" || r.BadgeCode == "" {
		return false, "User ID and badge code are required"
	}
	return true, ""
}

// HasValidBadgeShape reports whether the badge code has the expected number of characters
func (r *ScanRequest) HasValidBadgeShape() bool {
	return utf8.RuneCountInString(r.BadgeCode) == domain.BadgeCodeLength
}

// ScanResult is the outcome of an accepted scan. GameZone and SessionID are
// only set for game-zone entries.
type ScanResult struct {
	Message   string `json:"message"`
	GameZone  string `json:"gameZone,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}
