package engine

import "errors"

// Failure classes surfaced to callers. Handlers map these onto HTTP
// responses; services wrap them with context and never coerce state to
// avoid them.
var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrEventNotOpen      = errors.New("event is not open")
	ErrDeadlinePassed    = errors.New("signup window has closed")
	ErrAlreadySignedUp   = errors.New("already signed up for this event")
	ErrNotSignedUp       = errors.New("not signed up for this event")
	ErrLevelNotMet       = errors.New("staff level does not meet the event requirement")
	ErrLevelInUse        = errors.New("level is referenced by events or staff")
	ErrForbidden         = errors.New("operation not permitted for this role")
	ErrInvalidReason     = errors.New("adjustment reason must not be empty")
	ErrNotFound          = errors.New("not found")
)

// CodeFor returns the stable machine-readable code for a failure class,
// suitable for the "code" field of an error response.
func CodeFor(err error) string {
	switch {
	case errors.Is(err, ErrInvalidTransition):
		return "INVALID_TRANSITION"
	case errors.Is(err, ErrEventNotOpen):
		return "EVENT_NOT_OPEN"
	case errors.Is(err, ErrDeadlinePassed):
		return "DEADLINE_PASSED"
	case errors.Is(err, ErrAlreadySignedUp):
		return "ALREADY_SIGNED_UP"
	case errors.Is(err, ErrNotSignedUp):
		return "NOT_SIGNED_UP"
	case errors.Is(err, ErrLevelNotMet):
		return "LEVEL_NOT_MET"
	case errors.Is(err, ErrLevelInUse):
		return "LEVEL_IN_USE"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, ErrInvalidReason):
		return "INVALID_REASON"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	default:
		return "INTERNAL_ERROR"
	}
}
