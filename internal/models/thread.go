package models

import (
	"time"

	"github.com/google/uuid"
)

// Thread is a message thread shared by two profiles.
type Thread struct {
	ID             uuid.UUID   `json:"id"`
	EventID        *uuid.UUID  `json:"event_id,omitempty"`
	ParticipantIDs []uuid.UUID `json:"participant_ids"`
	CreatedAt      time.Time   `json:"created_at"`
}
