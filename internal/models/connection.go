package models

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the lifecycle state of a connection request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusAccepted  RequestStatus = "accepted"
	RequestStatusDeclined  RequestStatus = "declined"
	RequestStatusWithdrawn RequestStatus = "withdrawn"
	RequestStatusCancelled RequestStatus = "cancelled"
)

// ConnectionRequest is an explicit ask from Sender to connect with Recipient.
type ConnectionRequest struct {
	ID          uuid.UUID     `json:"id"`
	SenderID    uuid.UUID     `json:"sender_id"`
	RecipientID uuid.UUID     `json:"recipient_id"`
	EventID     *uuid.UUID    `json:"event_id,omitempty"`
	Message     string        `json:"message"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Counterpart returns the other party of the request relative to profileID.
func (r *ConnectionRequest) Counterpart(profileID uuid.UUID) uuid.UUID {
	if r.SenderID == profileID {
		return r.RecipientID
	}
	return r.SenderID
}

// Connection is an accepted relationship. ProfileAID < ProfileBID always holds.
type Connection struct {
	ID         uuid.UUID  `json:"id"`
	ProfileAID uuid.UUID  `json:"profile_a_id"`
	ProfileBID uuid.UUID  `json:"profile_b_id"`
	EventID    *uuid.UUID `json:"event_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// HasProfile reports whether id is one of the two parties.
func (c *Connection) HasProfile(id uuid.UUID) bool {
	return c.ProfileAID == id || c.ProfileBID == id
}

// Counterpart returns the other party relative to profileID.
func (c *Connection) Counterpart(profileID uuid.UUID) uuid.UUID {
	if c.ProfileAID == profileID {
		return c.ProfileBID
	}
	return c.ProfileAID
}

// CanonicalPair orders two profile ids so an unordered pair maps to one row.
func CanonicalPair(x, y uuid.UUID) (a, b uuid.UUID) {
	if x.String() <= y.String() {
		return x, y
	}
	return y, x
}
