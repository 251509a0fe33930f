package engine

import (
	"time"

	"github.com/crewpoint/staff-events-backend/internal/models"
)

// SignupCutoff returns the moment after which signups (and cancellations)
// are blocked for the event. Registration always closes at the start of the
// event's calendar day; an explicit deadline can only move the cutoff
// earlier.
func SignupCutoff(e models.Event) time.Time {
	d := e.EventDate
	cutoff := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	if e.SignupDeadline != nil && e.SignupDeadline.Before(cutoff) {
		cutoff = *e.SignupDeadline
	}
	return cutoff
}

// CanSignUp decides whether the staff member may sign up for the event at
// the given time. Checks run in order: event open, signup window, duplicate,
// level eligibility. A nil return means the signup is permitted.
func CanSignUp(e models.Event, signups []models.EventSignup, staff models.StaffMember, ladder Ladder, now time.Time) error {
	if e.Status != models.EventStatusOpen {
		return ErrEventNotOpen
	}
	if !now.Before(SignupCutoff(e)) {
		return ErrDeadlinePassed
	}
	if models.HasSignup(signups, staff.ID) {
		return ErrAlreadySignedUp
	}
	staffLevel, ok := ladder.LevelByName(staff.LevelName)
	if !ok {
		return ErrLevelNotMet
	}
	required, ok := ladder.LevelByID(e.RequiredLevelID)
	if !ok {
		return ErrLevelNotMet
	}
	if !IsEligible(staffLevel, required) {
		return ErrLevelNotMet
	}
	return nil
}

// CanCancelSignUp decides whether the staff member may withdraw their
// signup. The window check mirrors CanSignUp: once inside the no-signup
// window a signup can no longer be withdrawn either.
func CanCancelSignUp(e models.Event, signups []models.EventSignup, staffID string, now time.Time) error {
	if !models.HasSignup(signups, staffID) {
		return ErrNotSignedUp
	}
	if !now.Before(SignupCutoff(e)) {
		return ErrDeadlinePassed
	}
	return nil
}
