package models

import (
	"time"

	"github.com/google/uuid"
)

// MeetingStatus is the lifecycle state of a meeting.
type MeetingStatus string

const (
	MeetingStatusPending   MeetingStatus = "pending"
	MeetingStatusConfirmed MeetingStatus = "confirmed"
	MeetingStatusCancelled MeetingStatus = "cancelled"
)

// MeetingType is the stored meeting_type column.
type MeetingType string

const (
	MeetingTypeVideo    MeetingType = "video"
	MeetingTypeInPerson MeetingType = "in-person"
)

// MeetingFormat is what the organizer picked when booking.
type MeetingFormat string

const (
	MeetingFormatVideo    MeetingFormat = "video"
	MeetingFormatInPerson MeetingFormat = "in-person"
	MeetingFormatHybrid   MeetingFormat = "hybrid"
)

// MeetingMeta is the JSON meta column.
type MeetingMeta struct {
	MeetingFormat MeetingFormat `json:"meeting_format"`
	SessionID     *uuid.UUID    `json:"session_id,omitempty"`
	Message       string        `json:"message,omitempty"`
}

// Meeting is a scheduled appointment between two profiles.
type Meeting struct {
	ID          uuid.UUID     `json:"id"`
	OrganizerID uuid.UUID     `json:"organizer_id"`
	ProfileAID  uuid.UUID     `json:"profile_a_id"`
	ProfileBID  uuid.UUID     `json:"profile_b_id"`
	EventID     *uuid.UUID    `json:"event_id,omitempty"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	MeetingType MeetingType   `json:"meeting_type"`
	Location    string        `json:"location"`
	MeetingURL  string        `json:"meeting_url,omitempty"`
	Status      MeetingStatus `json:"status"`
	Meta        MeetingMeta   `json:"meta"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// HasProfile reports whether id is one of the two parties.
func (m *Meeting) HasProfile(id uuid.UUID) bool {
	return m.ProfileAID == id || m.ProfileBID == id
}

// Counterpart returns the other party relative to profileID.
func (m *Meeting) Counterpart(profileID uuid.UUID) uuid.UUID {
	if m.ProfileAID == profileID {
		return m.ProfileBID
	}
	return m.ProfileAID
}
