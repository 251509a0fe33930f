package engine

import (
	"fmt"

	"github.com/crewpoint/staff-events-backend/internal/models"
)

// CanTransition reports whether an event may move between the two statuses.
// The legal moves are draft -> open, open -> closed, open -> cancelled and
// cancelled -> open (reinstate). Closed is terminal.
func CanTransition(from, to models.EventStatus) bool {
	switch from {
	case models.EventStatusDraft:
		return to == models.EventStatusOpen
	case models.EventStatusOpen:
		return to == models.EventStatusClosed || to == models.EventStatusCancelled
	case models.EventStatusCancelled:
		return to == models.EventStatusOpen
	default:
		return false
	}
}

// Transition applies a status change to the event or fails with
// ErrInvalidTransition naming both statuses. State is never coerced.
func Transition(e *models.Event, to models.EventStatus) error {
	if !CanTransition(e.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, e.Status, to)
	}
	e.Status = to
	return nil
}

// IsTerminal reports whether the status admits no further transitions
func IsTerminal(status models.EventStatus) bool {
	return status == models.EventStatusClosed
}
