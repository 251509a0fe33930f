package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewpoint/staff-events-backend/internal/engine"
	"github.com/crewpoint/staff-events-backend/internal/models"
)

func validInput() EventInput {
	return EventInput{
		Name:            "Summer Fair",
		EventDate:       time.Now().AddDate(0, 0, 14),
		StartTime:       "14:00",
		Location:        "Main Hall",
		Points:          50,
		RequiredLevelID: "lvl-bronze",
	}
}

func TestCreateEventStartsAsDraft(t *testing.T) {
	env := newTestEnv()
	env.seedLadder()

	event, err := env.events.Create(validInput())
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusDraft, event.Status)
	assert.NotEmpty(t, event.ID)
}

func TestCreateEventValidation(t *testing.T) {
	env := newTestEnv()
	env.seedLadder()

	tests := []struct {
		name   string
		mutate func(*EventInput)
	}{
		{"empty name", func(in *EventInput) { in.Name = "  " }},
		{"zero date", func(in *EventInput) { in.EventDate = time.Time{} }},
		{"negative points", func(in *EventInput) { in.Points = -1 }},
		{"unknown level", func(in *EventInput) { in.RequiredLevelID = "lvl-nope" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)
			_, err := env.events.Create(input)
			assert.Error(t, err)
		})
	}
}

func TestEventLifecycle(t *testing.T) {
	env := newTestEnv()
	env.seedLadder()

	event, err := env.events.Create(validInput())
	require.NoError(t, err)

	// draft -> open announces the event
	event, err = env.events.Open(event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusOpen, event.Status)
	assert.Contains(t, env.notifier.opened, event.ID)

	// open -> cancelled
	event, err = env.events.Cancel(event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusCancelled, event.Status)

	// cancelled -> open again
	event, err = env.events.Reinstate(event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusOpen, event.Status)
	assert.Contains(t, env.notifier.reinstated, event.ID)

	// open -> closed via selection; closed is terminal
	_, err = env.events.Close(event.ID, nil, "admin-1")
	require.NoError(t, err)

	_, err = env.events.Cancel(event.ID)
	assert.ErrorIs(t, err, engine.ErrInvalidTransition)
	_, err = env.events.Open(event.ID)
	assert.ErrorIs(t, err, engine.ErrInvalidTransition)
}

func TestReinstateRequiresCancelled(t *testing.T) {
	env := newTestEnv()
	env.seedLadder()
	event := env.seedOpenEvent("evt-1", 50)

	_, err := env.events.Reinstate(event.ID)
	assert.ErrorIs(t, err, engine.ErrInvalidTransition)
}

func TestSignUpAdmission(t *testing.T) {
	env := newTestEnv()
	env.seedLadder()
	env.seedStaff("anna", "Bronze", 0)
	event := env.seedOpenEvent("evt-1", 50)

	require.NoError(t, env.events.SignUp(event.ID, "anna"))

	// Duplicate signup is rejected
	err := env.events.SignUp(event.ID, "anna")
	assert.ErrorIs(t, err, engine.ErrAlreadySignedUp)

	signups, err := env.events.Signups(event.ID)
	require.NoError(t, err)
	assert.Len(t, signups, 1)
}

func TestSignUpRequiresOpenEvent(t *testing.T) {
	env := newTestEnv()
	env.seedLadder()
	env.seedStaff("anna", "Bronze", 0)

	event, err := env.events.Create(validInput())
	require.NoError(t, err)

	err = env.events.SignUp(event.ID, "anna")
	assert.ErrorIs(t, err, engine.ErrEventNotOpen)
}

func TestSignUpEnforcesLevel(t *testing.T) {
	env := newTestEnv()
	env.seedLadder()
	env.seedStaff("anna", "Bronze", 0)

	event := env.seedOpenEvent("evt-1", 50)
	event.RequiredLevelID = "lvl-silver"
	require.NoError(t, env.store.Update(event))

	err := env.events.SignUp(event.ID, "anna")
	assert.ErrorIs(t, err, engine.ErrLevelNotMet)

	// After earning enough points the same signup goes through
	_, _, err = env.points.AdjustPoints("anna", 600, "long service", "admin-1", nil)
	require.NoError(t, err)

	assert.NoError(t, env.events.SignUp(event.ID, "anna"))
}

func TestSignUpWindowCloses(t *testing.T) {
	env := newTestEnv()
	env.seedLadder()
	env.seedStaff("anna", "Bronze", 0)

	eventDate := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	deadline := time.Date(2026, 9, 8, 9, 0, 0, 0, time.UTC)
	event := &models.Event{
		ID:              "evt-1",
		Name:            "Gala Night",
		EventDate:       eventDate,
		StartTime:       "19:00",
		Location:        "Ballroom",
		Points:          80,
		RequiredLevelID: "lvl-bronze",
		SignupDeadline:  &deadline,
		Status:          models.EventStatusOpen,
	}
	require.NoError(t, env.store.Create(event))

	// An hour after the explicit deadline, even though the event is two days out
	env.events.SetNowFunc(func() time.Time {
		return time.Date(2026, 9, 8, 10, 0, 0, 0, time.UTC)
	})
	err := env.events.SignUp(event.ID, "anna")
	assert.ErrorIs(t, err, engine.ErrDeadlinePassed)

	// Before the deadline it works
	env.events.SetNowFunc(func() time.Time {
		return time.Date(2026, 9, 8, 8, 0, 0, 0, time.UTC)
	})
	assert.NoError(t, env.events.SignUp(event.ID, "anna"))
}

func TestCancelSignUpSameWindow(t *testing.T) {
	env := newTestEnv()
	env.seedLadder()
	env.seedStaff("anna", "Bronze", 0)
	event := env.seedOpenEvent("evt-1", 50)

	require.NoError(t, env.events.SignUp(event.ID, "anna"))
	require.NoError(t, env.events.CancelSignUp(event.ID, "anna"))

	// Withdrawing twice fails
	err := env.events.CancelSignUp(event.ID, "anna")
	assert.ErrorIs(t, err, engine.ErrNotSignedUp)
}

func TestCancelSignUpBlockedInsideWindow(t *testing.T) {
	env := newTestEnv()
	env.seedLadder()
	env.seedStaff("anna", "Bronze", 0)
	event := env.seedOpenEvent("evt-1", 50)
	require.NoError(t, env.events.SignUp(event.ID, "anna"))

	// On the event day the withdrawal window has closed
	env.events.SetNowFunc(func() time.Time {
		return event.EventDate.Add(2 * time.Hour)
	})
	err := env.events.CancelSignUp(event.ID, "anna")
	assert.ErrorIs(t, err, engine.ErrDeadlinePassed)
}

func TestCancelAndReinstatePreservesSignups(t *testing.T) {
	env := newTestEnv()
	env.seedLadder()
	env.seedStaff("anna", "Bronze", 0)
	env.seedStaff("ben", "Bronze", 0)
	event := env.seedOpenEvent("evt-1", 50)

	require.NoError(t, env.events.SignUp(event.ID, "anna"))
	require.NoError(t, env.events.SignUp(event.ID, "ben"))

	_, err := env.events.Cancel(event.ID)
	require.NoError(t, err)

	signups, err := env.store.ListSignups(event.ID)
	require.NoError(t, err)
	assert.Len(t, signups, 2, "cancellation must not drop signups")

	_, err = env.events.Reinstate(event.ID)
	require.NoError(t, err)

	signups, err = env.store.ListSignups(event.ID)
	require.NoError(t, err)
	assert.Len(t, signups, 2, "reinstatement picks the old signups back up")

	// No duplicate admission after reinstatement
	err = env.events.SignUp(event.ID, "anna")
	assert.ErrorIs(t, err, engine.ErrAlreadySignedUp)
}

func TestCloseAwardsSelectedAndRejectsRest(t *testing.T) {
	env := newTestEnv()
	env.seedLadder()
	env.seedStaff("a", "Bronze", 0)
	env.seedStaff("b", "Bronze", 0)
	env.seedStaff("c", "Bronze", 0)
	event := env.seedOpenEvent("evt-1", 40)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, env.events.SignUp(event.ID, id))
	}

	summary, err := env.events.Close(event.ID, []string{"a", "b"}, "admin-1")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a", "b"}, summary.Awarded)
	assert.ElementsMatch(t, []string{"c"}, summary.Rejected)
	assert.Empty(t, summary.Failed)

	for _, id := range []string{"a", "b"} {
		member, err := env.store.GetStaffByID(id)
		require.NoError(t, err)
		assert.Equal(t, 40, member.Points)
	}
	memberC, err := env.store.GetStaffByID("c")
	require.NoError(t, err)
	assert.Equal(t, 0, memberC.Points)

	assert.ElementsMatch(t, []string{"a", "b"}, env.notifier.selected)
	assert.ElementsMatch(t, []string{"c"}, env.notifier.rejected)

	got, err := env.events.GetByID(event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusClosed, got.Status)
}

func TestCloseIgnoresSelectionWithoutSignup(t *testing.T) {
	env := newTestEnv()
	env.seedLadder()
	env.seedStaff("a", "Bronze", 0)
	event := env.seedOpenEvent("evt-1", 40)
	require.NoError(t, env.events.SignUp(event.ID, "a"))

	// The approved set is the intersection with the signups; a stray id
	// falls out instead of blocking the close
	summary, err := env.events.Close(event.ID, []string{"a", "stranger"}, "admin-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a"}, summary.Awarded)
	assert.Empty(t, summary.Rejected)
	assert.Empty(t, summary.Failed)

	got, err := env.events.GetByID(event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusClosed, got.Status)
}

func TestClosePartialFailureLeavesEventOpen(t *testing.T) {
	env := newTestEnv()
	env.seedLadder()
	env.seedStaff("a", "Bronze", 0)
	env.seedStaff("b", "Bronze", 0)
	event := env.seedOpenEvent("evt-1", 40)
	require.NoError(t, env.events.SignUp(event.ID, "a"))
	require.NoError(t, env.events.SignUp(event.ID, "b"))

	// b's record disappears between signup and payout
	delete(env.store.staff, "b")

	summary, err := env.events.Close(event.ID, []string{"a", "b"}, "admin-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a"}, summary.Awarded)
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, "b", summary.Failed[0].StaffID)
	assert.Equal(t, "NOT_FOUND", summary.Failed[0].Code)

	got, err := env.events.GetByID(event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusOpen, got.Status, "a failed payout run must not close the event")

	// Once the record is back the same close goes through; a's earlier
	// payout is not repeated
	env.seedStaff("b", "Bronze", 0)
	summary, err = env.events.Close(event.ID, []string{"a", "b"}, "admin-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b"}, summary.Awarded)
	assert.ElementsMatch(t, []string{"a"}, summary.AlreadyAwarded)
	assert.Empty(t, summary.Failed)

	got, err = env.events.GetByID(event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusClosed, got.Status)

	memberA, err := env.store.GetStaffByID("a")
	require.NoError(t, err)
	assert.Equal(t, 40, memberA.Points)
	memberB, err := env.store.GetStaffByID("b")
	require.NoError(t, err)
	assert.Equal(t, 40, memberB.Points)
}

func TestCloseTwiceIsInvalidTransition(t *testing.T) {
	env := newTestEnv()
	env.seedLadder()
	event := env.seedOpenEvent("evt-1", 40)

	_, err := env.events.Close(event.ID, nil, "admin-1")
	require.NoError(t, err)

	_, err = env.events.Close(event.ID, nil, "admin-1")
	assert.ErrorIs(t, err, engine.ErrInvalidTransition)
}

func TestBulkSignUpBypassesDeadlineAndLevel(t *testing.T) {
	env := newTestEnv()
	env.seedLadder()
	env.seedStaff("anna", "Bronze", 0)

	deadline := time.Now().Add(-time.Hour)
	event := env.seedOpenEvent("evt-1", 50)
	event.RequiredLevelID = "lvl-silver"
	event.SignupDeadline = &deadline
	require.NoError(t, env.store.Update(event))

	// Self-service signup is gated
	err := env.events.SignUp(event.ID, "anna")
	assert.ErrorIs(t, err, engine.ErrDeadlinePassed)

	// The admin override is not
	results, err := env.events.BulkSignUp(event.ID, []string{"anna"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].OK)

	signups, err := env.store.ListSignups(event.ID)
	require.NoError(t, err)
	assert.Len(t, signups, 1)
}

func TestBulkSignUpReportsPerMember(t *testing.T) {
	env := newTestEnv()
	env.seedLadder()
	env.seedStaff("anna", "Bronze", 0)
	env.seedStaff("silvia", "Silver", 600)
	event := env.seedOpenEvent("evt-1", 50)
	event.RequiredLevelID = "lvl-silver"
	require.NoError(t, env.store.Update(event))

	require.NoError(t, env.events.SignUp(event.ID, "silvia"))

	results, err := env.events.BulkSignUp(event.ID, []string{"silvia", "anna", "ghost"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	byID := map[string]SignupResult{}
	for _, r := range results {
		byID[r.StaffID] = r
	}

	// Duplicates and unknown members still fail; the level gate does not
	// apply to the override
	assert.False(t, byID["silvia"].OK)
	assert.Equal(t, "ALREADY_SIGNED_UP", byID["silvia"].Code)
	assert.True(t, byID["anna"].OK)
	assert.False(t, byID["ghost"].OK)
	assert.Equal(t, "NOT_FOUND", byID["ghost"].Code)
}

func TestBulkSignUpRequiresOpenEvent(t *testing.T) {
	env := newTestEnv()
	env.seedLadder()
	env.seedStaff("anna", "Bronze", 0)

	event, err := env.events.Create(validInput())
	require.NoError(t, err)

	_, err = env.events.BulkSignUp(event.ID, []string{"anna"})
	assert.ErrorIs(t, err, engine.ErrEventNotOpen)
}

func TestDeleteOnlyDrafts(t *testing.T) {
	env := newTestEnv()
	env.seedLadder()

	draft, err := env.events.Create(validInput())
	require.NoError(t, err)
	require.NoError(t, env.events.Delete(draft.ID))

	open := env.seedOpenEvent("evt-open", 10)
	err = env.events.Delete(open.ID)
	assert.ErrorIs(t, err, engine.ErrInvalidTransition)
}

func TestUpdateBlockedOnClosedEvent(t *testing.T) {
	env := newTestEnv()
	env.seedLadder()
	event := env.seedOpenEvent("evt-1", 10)
	_, err := env.events.Close(event.ID, nil, "admin-1")
	require.NoError(t, err)

	_, err = env.events.Update(event.ID, validInput())
	assert.ErrorIs(t, err, engine.ErrInvalidTransition)
}

func TestListVisible(t *testing.T) {
	env := newTestEnv()
	env.seedLadder()
	env.seedStaff("anna", "Bronze", 0)

	draft, err := env.events.Create(validInput())
	require.NoError(t, err)
	open := env.seedOpenEvent("evt-open", 10)

	closed := env.seedOpenEvent("evt-closed", 10)
	require.NoError(t, env.events.SignUp(closed.ID, "anna"))
	_, err = env.events.Close(closed.ID, []string{"anna"}, "admin-1")
	require.NoError(t, err)

	otherClosed := env.seedOpenEvent("evt-other", 10)
	_, err = env.events.Close(otherClosed.ID, nil, "admin-1")
	require.NoError(t, err)

	visible, err := env.events.ListVisible("anna")
	require.NoError(t, err)

	ids := make([]string, 0, len(visible))
	for _, e := range visible {
		ids = append(ids, e.ID)
	}
	assert.Contains(t, ids, open.ID)
	assert.Contains(t, ids, closed.ID, "events with own signup stay visible")
	assert.NotContains(t, ids, draft.ID, "drafts are admin-only")
	assert.NotContains(t, ids, otherClosed.ID)
}

func TestVisibleTo(t *testing.T) {
	env := newTestEnv()
	env.seedLadder()
	env.seedStaff("anna", "Bronze", 0)
	env.seedStaff("ben", "Bronze", 0)

	open := env.seedOpenEvent("evt-open", 10)
	assert.True(t, env.events.VisibleTo(open, "anna"))

	draft, err := env.events.Create(validInput())
	require.NoError(t, err)
	assert.False(t, env.events.VisibleTo(draft, "anna"))

	require.NoError(t, env.events.SignUp(open.ID, "anna"))
	cancelled, err := env.events.Cancel(open.ID)
	require.NoError(t, err)
	assert.True(t, env.events.VisibleTo(cancelled, "anna"))
	assert.False(t, env.events.VisibleTo(cancelled, "ben"))
}
