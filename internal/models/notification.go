package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType categorizes notifications for the client.
type NotificationType string

const (
	NotificationConnectionRequest  NotificationType = "connection_request"
	NotificationConnectionAccepted NotificationType = "connection_accepted"
	NotificationConnectionDeclined NotificationType = "connection_declined"
	NotificationConnectionRemoved  NotificationType = "connection_removed"
	NotificationRequestCancelled   NotificationType = "request_cancelled"
	NotificationRequestWithdrawn   NotificationType = "request_withdrawn"
	NotificationMeetingRequested   NotificationType = "meeting_requested"
	NotificationMeetingConfirmed   NotificationType = "meeting_confirmed"
	NotificationMeetingDeclined    NotificationType = "meeting_declined"
	NotificationMeetingCancelled   NotificationType = "meeting_cancelled"
)

// Notification is a row in the notifications table.
type Notification struct {
	ID          uuid.UUID        `json:"id"`
	RecipientID uuid.UUID        `json:"recipient_id"`
	ActorID     uuid.UUID        `json:"actor_id"`
	Title       string           `json:"title"`
	Body        string           `json:"body"`
	Type        NotificationType `json:"type"`
	ActionURL   string           `json:"action_url"`
	ReadAt      *time.Time       `json:"read_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}
