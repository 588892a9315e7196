package dto

import "github.com/AlTattoo/top-challenges/backend-ledger/internal/domain"

// IssueSanctionRequest represents a sanction issued by an admin
type IssueSanctionRequest struct {
	UserID  string `json:"userId"`
	Reason  string `json:"reason"`
	AdminID string `json:"adminId"`
}

// Validate validates the IssueSanctionRequest
func (r *IssueSanctionRequest) Validate() (bool, string) {
	if r.UserID == "" || r.Reason == "" || r.AdminID == "" {
		return false, "User ID, reason, and admin ID are required"
	}
	return true, ""
}

// SanctionResponse represents a recorded sanction
type SanctionResponse struct {
	Message  string          `json:"message"`
	Sanction domain.Sanction `json:"sanction"`
}

// SanctionListResponse lists a participant's sanctions in issue order
type SanctionListResponse struct {
	Sanctions []domain.Sanction `json:"sanctions"`
}
