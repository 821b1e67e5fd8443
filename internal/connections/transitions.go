package connections

import (
	"fmt"

	"github.com/aura-events/networking/internal/models"
)

// validTransitions lists every allowed (from → to) request status pair.
// accepted, declined, withdrawn and cancelled are terminal.
var validTransitions = map[models.RequestStatus][]models.RequestStatus{
	models.RequestStatusPending: {
		models.RequestStatusAccepted,
		models.RequestStatusDeclined,
		models.RequestStatusWithdrawn,
		models.RequestStatusCancelled,
	},
}

// ParseStatus converts a raw string to a RequestStatus.
func ParseStatus(s string) (models.RequestStatus, error) {
	st := models.RequestStatus(s)
	switch st {
	case models.RequestStatusPending, models.RequestStatusAccepted, models.RequestStatusDeclined,
		models.RequestStatusWithdrawn, models.RequestStatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown request status %q", s)
}

// IsTransitionAllowed reports whether a request may move from → to.
func IsTransitionAllowed(from, to models.RequestStatus) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible from s.
func IsTerminal(s models.RequestStatus) bool {
	return len(validTransitions[s]) == 0
}

// Box selects which side of the request lists to return.
type Box string

const (
	BoxReceived Box = "received"
	BoxSent     Box = "sent"
	BoxAll      Box = "all"
)

// ParseBox converts a query value to a Box. Empty means received.
func ParseBox(s string) (Box, error) {
	switch Box(s) {
	case "", BoxReceived:
		return BoxReceived, nil
	case BoxSent, BoxAll:
		return Box(s), nil
	}
	return "", fmt.Errorf("unknown box %q", s)
}
