package dto

import "time"

// NotifyRequest represents a notification to a participant
type NotifyRequest struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Validate validates the NotifyRequest
func (r *NotifyRequest) Validate() (bool, string) {
	if r.UserID == "" || r.Message == "" || r.Type == "" {
		return false, "User ID, message, and type are required"
	}
	return true, ""
}

// Notification echoes an accepted notification
type Notification struct {
	UserID  string    `json:"userId"`
	Message string    `json:"message"`
	Type    string    `json:"type"`
	SentAt  time.Time `json:"sentAt"`
}

// NotifyResponse represents the response of POST /notifications
type NotifyResponse struct {
	Message      string       `json:"message"`
	Notification Notification `json:"notification"`
}
