package domain

import "errors"

// Causes carried by the typed errors below, usable with errors.Is
var (
	ErrParticipantNotFound   = errors.New("participant not found")
	ErrAdminNotFound         = errors.New("admin not found")
	ErrChallengeNotFound     = errors.New("challenge not found")
	ErrParticipantExists     = errors.New("participant with this pseudo or phone number already exists")
	ErrNoValidTicket         = errors.New("no valid ticket available")
	ErrInvalidBadgeCode      = errors.New("invalid badge code")
	ErrInvalidGameZone       = errors.New("invalid game zone")
	ErrChallengeNotCompleted = errors.New("challenge is not completed")
	ErrRewardAlreadyClaimed  = errors.New("reward already claimed")
)

// ValidationError reports missing or malformed input
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return e.Err }

// NotFoundError reports a referenced participant, admin or challenge that does not exist
type NotFoundError struct {
	Err error
}

func (e *NotFoundError) Error() string { return e.Err.Error() }
func (e *NotFoundError) Unwrap() error { return e.Err }

// ConflictError reports a uniqueness or state conflict
type ConflictError struct {
	Err error
}

func (e *ConflictError) Error() string { return e.Err.Error() }
func (e *ConflictError) Unwrap() error { return e.Err }

// ForbiddenError reports an operation the participant is not entitled to
type ForbiddenError struct {
	Err error
}

func (e *ForbiddenError) Error() string { return e.Err.Error() }
func (e *ForbiddenError) Unwrap() error { return e.Err }

// NewValidationError creates a ValidationError with a caller-facing message
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// NewValidationErrorFrom creates a ValidationError wrapping a known cause
func NewValidationErrorFrom(cause error) error {
	return &ValidationError{Message: cause.Error(), Err: cause}
}

// NewNotFoundError wraps cause as a NotFoundError
func NewNotFoundError(cause error) error {
	return &NotFoundError{Err: cause}
}

// NewConflictError wraps cause as a ConflictError
func NewConflictError(cause error) error {
	return &ConflictError{Err: cause}
}

// NewForbiddenError wraps cause as a ForbiddenError
func NewForbiddenError(cause error) error {
	return &ForbiddenError{Err: cause}
}

// IsValidationError checks if err is a ValidationError
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFoundError checks if err is a NotFoundError
func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsConflictError checks if err is a ConflictError
func IsConflictError(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// IsForbiddenError checks if err is a ForbiddenError
func IsForbiddenError(err error) bool {
	var target *ForbiddenError
	return errors.As(err, &target)
}
