package dto

import (
	"strings"

	"github.com/AlTattoo/top-challenges/backend-ledger/internal/domain"
)

// RegisterRequest represents the request to register a participant
type RegisterRequest struct {
	Pseudo         string  `json:"pseudo"`
	PhoneNumber    string  `json:"phoneNumber"`
	ProfilePicture *string `json:"profilePicture"`
}

// Normalize trims the identifying fields
func (r *RegisterRequest) Normalize() {
	r.Pseudo = strings.TrimSpace(r.Pseudo)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	if r.ProfilePicture != nil && strings.TrimSpace(*r.ProfilePicture) == "" {
		r.ProfilePicture = nil
	}
}

// Validate validates the RegisterRequest
func (r *RegisterRequest) Validate() (bool, string) {
	if r.Pseudo == "" || r.PhoneNumber == "" {
		return false, "Pseudo and phone number are required"
	}
	return true, ""
}

// RegisteredUser is the participant summary returned on registration
type RegisteredUser struct {
	ID      string          `json:"id"`
	Pseudo  string          `json:"pseudo"`
	Tickets []domain.Ticket `json:"tickets"`
}

// RegisterResponse represents the response of a registration
type RegisterResponse struct {
	Message string         `json:"message"`
	User    RegisteredUser `json:"user"`
}

// NewRegisterResponse builds the registration response
func NewRegisterResponse(p *domain.Participant) *RegisterResponse {
	return &RegisterResponse{
		Message: "User registered successfully",
		User: RegisteredUser{
			ID:      p.ID,
			Pseudo:  p.Pseudo,
			Tickets: p.Tickets,
		},
	}
}
