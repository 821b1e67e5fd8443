package meetings

import (
	"testing"

	"github.com/google/uuid"

	"github.com/aura-events/networking/internal/models"
)

func TestIsTransitionAllowed(t *testing.T) {
	tests := []struct {
		from, to models.MeetingStatus
		want     bool
	}{
		{models.MeetingStatusPending, models.MeetingStatusConfirmed, true},
		{models.MeetingStatusPending, models.MeetingStatusCancelled, true},
		{models.MeetingStatusConfirmed, models.MeetingStatusCancelled, false},
		{models.MeetingStatusCancelled, models.MeetingStatusConfirmed, false},
		{models.MeetingStatusCancelled, models.MeetingStatusPending, false},
	}
	for _, tt := range tests {
		if got := IsTransitionAllowed(tt.from, tt.to); got != tt.want {
			t.Errorf("IsTransitionAllowed(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestMayAct(t *testing.T) {
	organizer, guest := uuid.New(), uuid.New()
	m := &models.Meeting{OrganizerID: organizer, ProfileAID: organizer, ProfileBID: guest}

	tests := []struct {
		actor  uuid.UUID
		action Action
		want   bool
	}{
		{organizer, ActionCancel, true},
		{organizer, ActionConfirm, false},
		{organizer, ActionDecline, false},
		{guest, ActionConfirm, true},
		{guest, ActionDecline, true},
		{guest, ActionCancel, false},
		{uuid.New(), ActionConfirm, false},
	}
	for _, tt := range tests {
		if got := mayAct(m, tt.actor, tt.action); got != tt.want {
			t.Errorf("mayAct(%s) by organizer=%v = %v, want %v", tt.action, tt.actor == organizer, got, tt.want)
		}
	}
}
