package matching

import (
	"fmt"

	"github.com/aura-events/networking/internal/models"
)

// validTransitions lists every allowed (from → to) match status pair.
//
//	new ──► pending ──► new   (request withdrawn)
//	 │
//	 └────► dismissed
var validTransitions = map[models.MatchStatus][]models.MatchStatus{
	models.MatchStatusNew:     {models.MatchStatusPending, models.MatchStatusDismissed},
	models.MatchStatusPending: {models.MatchStatusNew},
}

// ParseStatus converts a raw string to a MatchStatus.
func ParseStatus(s string) (models.MatchStatus, error) {
	st := models.MatchStatus(s)
	switch st {
	case models.MatchStatusNew, models.MatchStatusPending, models.MatchStatusDismissed:
		return st, nil
	}
	return "", fmt.Errorf("unknown match status %q", s)
}

// IsTransitionAllowed reports whether a match may move from → to.
func IsTransitionAllowed(from, to models.MatchStatus) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
