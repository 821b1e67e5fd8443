package meetings

import (
	"github.com/google/uuid"

	"github.com/aura-events/networking/internal/models"
)

// validTransitions lists every allowed (from → to) meeting status pair.
// Reschedule is not a transition: it overwrites the row and resets it to pending.
var validTransitions = map[models.MeetingStatus][]models.MeetingStatus{
	models.MeetingStatusPending: {models.MeetingStatusConfirmed, models.MeetingStatusCancelled},
}

// IsTransitionAllowed reports whether a meeting may move from → to.
func IsTransitionAllowed(from, to models.MeetingStatus) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Action is a state-changing move on a meeting.
type Action string

const (
	ActionConfirm Action = "confirm"
	ActionDecline Action = "decline"
	ActionCancel  Action = "cancel"
)

// target returns the status an action moves a meeting to.
func (a Action) target() models.MeetingStatus {
	if a == ActionConfirm {
		return models.MeetingStatusConfirmed
	}
	return models.MeetingStatusCancelled
}

// mayAct reports whether actor may take a on m. The organizer can only cancel;
// the counterpart can only confirm or decline.
func mayAct(m *models.Meeting, actorID uuid.UUID, a Action) bool {
	if !m.HasProfile(actorID) {
		return false
	}
	organizer := m.OrganizerID == actorID
	switch a {
	case ActionCancel:
		return organizer
	case ActionConfirm, ActionDecline:
		return !organizer
	}
	return false
}

// AllowedActions returns what actorID may currently do on m.
func AllowedActions(m *models.Meeting, actorID uuid.UUID) []Action {
	var out []Action
	for _, a := range []Action{ActionConfirm, ActionDecline, ActionCancel} {
		if mayAct(m, actorID, a) && IsTransitionAllowed(m.Status, a.target()) {
			out = append(out, a)
		}
	}
	return out
}
