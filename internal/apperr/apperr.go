// Package apperr holds the error taxonomy shared by the networking services.
package apperr

import "errors"

var (
	// ErrNotFound is returned when a row is missing or not visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller is not the party allowed to act.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidTransition is returned when a state machine rejects a move.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrSessionFull is returned when an event session has no remaining slots.
	ErrSessionFull = errors.New("session is full")
	// ErrNoMeetingLink is returned when a meeting has no stored call URL.
	ErrNoMeetingLink = errors.New("no meeting link available")
)

// ValidationError wraps a user-facing validation message. It is returned
// before any store call is made.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// Invalid builds a ValidationError.
func Invalid(msg string) error { return &ValidationError{Msg: msg} }
