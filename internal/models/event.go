package models

import (
	"time"

	"github.com/google/uuid"
)

// Event formats as stored in events.format.
const (
	EventFormatVirtual  = "virtual"
	EventFormatInPerson = "in-person"
	EventFormatHybrid   = "hybrid"
)

// Event is a published event from the external catalog.
type Event struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Format    string     `json:"format"`
	Location  string     `json:"location"`
	StartsAt  time.Time  `json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// EventSession is a scheduled slot within an event, usable as an in-person meeting slot.
type EventSession struct {
	ID        uuid.UUID  `json:"id"`
	EventID   uuid.UUID  `json:"event_id"`
	Title     string     `json:"title"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Location  string     `json:"location"`
	Capacity  int        `json:"capacity"`
	Attendees int        `json:"attendees"`
}
