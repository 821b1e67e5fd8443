package models

import (
	"time"

	"github.com/google/uuid"
)

// MatchStatus is the lifecycle state of a suggested match.
type MatchStatus string

const (
	MatchStatusNew       MatchStatus = "new"
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusDismissed MatchStatus = "dismissed"
)

// Match is a system-suggested pairing from ProfileID's point of view.
type Match struct {
	ID               uuid.UUID   `json:"id"`
	ProfileID        uuid.UUID   `json:"profile_id"`
	MatchedProfileID uuid.UUID   `json:"matched_profile_id"`
	EventID          *uuid.UUID  `json:"event_id,omitempty"`
	Score            int         `json:"score"`
	Reason           string      `json:"reason"`
	Tags             []string    `json:"tags"`
	Status           MatchStatus `json:"status"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// SameEvent reports whether two optional event ids refer to the same event key (nil == nil).
func SameEvent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
