package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/crewpoint/staff-events-backend/internal/engine"
	"github.com/crewpoint/staff-events-backend/internal/models"
)

// EventInput carries the descriptive fields of an event
type EventInput struct {
	Name            string     `json:"name"`
	EventDate       time.Time  `json:"event_date"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	StartTime       string     `json:"start_time"`
	Duration        *string    `json:"duration,omitempty"`
	Location        string     `json:"location"`
	Description     *string    `json:"description,omitempty"`
	Points          int        `json:"points"`
	RequiredLevelID string     `json:"required_level_id"`
	SignupDeadline  *time.Time `json:"signup_deadline,omitempty"`
}

// SignupResult reports the outcome of one staff member in a bulk signup
type SignupResult struct {
	StaffID string `json:"staff_id"`
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// CloseSummary reports the outcome of closing an event
type CloseSummary struct {
	EventID        string         `json:"event_id"`
	Awarded        []string       `json:"awarded"`
	AlreadyAwarded []string       `json:"already_awarded"`
	Rejected       []string       `json:"rejected"`
	Failed         []SignupResult `json:"failed,omitempty"`
}

// EventService handles the event lifecycle, admission, and selection
type EventService struct {
	events   EventStore
	staff    StaffStore
	levels   LevelStore
	points   *PointsService
	levelSvc *LevelService
	notifier Notifier
	logger   *logrus.Logger
	nowFn    func() time.Time
}

// NewEventService creates a new EventService
func NewEventService(
	events EventStore,
	staff StaffStore,
	levels LevelStore,
	points *PointsService,
	levelSvc *LevelService,
	notifier Notifier,
	logger *logrus.Logger,
) *EventService {
	return &EventService{
		events:   events,
		staff:    staff,
		levels:   levels,
		points:   points,
		levelSvc: levelSvc,
		notifier: notifier,
		logger:   logger,
		nowFn:    time.Now,
	}
}

// SetNowFunc overrides the clock. Tests only.
func (s *EventService) SetNowFunc(fn func() time.Time) {
	s.nowFn = fn
}

// Create stores a new event in draft status
func (s *EventService) Create(input EventInput) (*models.Event, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	event := &models.Event{
		Name:            strings.TrimSpace(input.Name),
		EventDate:       input.EventDate,
		EndDate:         input.EndDate,
		StartTime:       input.StartTime,
		Duration:        input.Duration,
		Location:        input.Location,
		Description:     input.Description,
		Points:          input.Points,
		RequiredLevelID: input.RequiredLevelID,
		SignupDeadline:  input.SignupDeadline,
		Status:          models.EventStatusDraft,
	}

	if err := s.events.Create(event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return event, nil
}

// Update changes an event's descriptive fields. Status is changed only
// through the lifecycle operations.
func (s *EventService) Update(eventID string, input EventInput) (*models.Event, error) {
	event, err := s.getEvent(eventID)
	if err != nil {
		return nil, err
	}

	if engine.IsTerminal(event.Status) {
		return nil, fmt.Errorf("%w: event is %s", engine.ErrInvalidTransition, event.Status)
	}

	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	event.Name = strings.TrimSpace(input.Name)
	event.EventDate = input.EventDate
	event.EndDate = input.EndDate
	event.StartTime = input.StartTime
	event.Duration = input.Duration
	event.Location = input.Location
	event.Description = input.Description
	event.Points = input.Points
	event.RequiredLevelID = input.RequiredLevelID
	event.SignupDeadline = input.SignupDeadline

	if err := s.events.Update(event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return event, nil
}

// Open publishes a draft event for signups and notifies eligible staff
func (s *EventService) Open(eventID string) (*models.Event, error) {
	event, err := s.transition(eventID, models.EventStatusOpen)
	if err != nil {
		return nil, err
	}
	s.notifier.EventOpened(*event)
	return event, nil
}

// Cancel cancels an open event. Signups are preserved so a later
// reinstatement picks them back up.
func (s *EventService) Cancel(eventID string) (*models.Event, error) {
	event, err := s.transition(eventID, models.EventStatusCancelled)
	if err != nil {
		return nil, err
	}
	s.notifier.EventCancelled(*event)
	return event, nil
}

// Reinstate moves a cancelled event back to open with its signups intact
func (s *EventService) Reinstate(eventID string) (*models.Event, error) {
	event, err := s.getEvent(eventID)
	if err != nil {
		return nil, err
	}
	if event.Status != models.EventStatusCancelled {
		return nil, fmt.Errorf("%w: %s -> %s", engine.ErrInvalidTransition, event.Status, models.EventStatusOpen)
	}
	event, err = s.transition(eventID, models.EventStatusOpen)
	if err != nil {
		return nil, err
	}
	s.notifier.EventReinstated(*event)
	return event, nil
}

// Close finalizes an open event: the selected staff get confirmed and paid,
// everyone else who signed up is rejected. Selected ids without a signup are
// ignored. The event only moves to closed once every payout has gone through;
// a partial failure leaves it open with the failures in the summary, so the
// same call can be retried (already-paid members are no-ops the second time).
func (s *EventService) Close(eventID string, selectedIDs []string, actorID string) (*CloseSummary, error) {
	event, err := s.getEvent(eventID)
	if err != nil {
		return nil, err
	}

	if !engine.CanTransition(event.Status, models.EventStatusClosed) {
		return nil, fmt.Errorf("%w: %s -> %s", engine.ErrInvalidTransition, event.Status, models.EventStatusClosed)
	}

	signups, err := s.events.ListSignups(eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load signups: %w", err)
	}

	selected := make(map[string]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		selected[id] = true
	}

	summary := &CloseSummary{EventID: eventID}
	var rejectedIDs []string

	for _, signup := range signups {
		if !selected[signup.StaffID] {
			rejectedIDs = append(rejectedIDs, signup.StaffID)
			continue
		}

		awarded, _, err := s.points.Confirm(eventID, signup.StaffID, actorID)
		switch {
		case err != nil:
			summary.Failed = append(summary.Failed, SignupResult{
				StaffID: signup.StaffID,
				Code:    engine.CodeFor(err),
				Message: err.Error(),
			})
		case awarded:
			summary.Awarded = append(summary.Awarded, signup.StaffID)
		default:
			summary.AlreadyAwarded = append(summary.AlreadyAwarded, signup.StaffID)
		}
	}

	summary.Rejected = rejectedIDs

	if len(summary.Failed) > 0 {
		s.logger.WithFields(logrus.Fields{
			"event_id": eventID,
			"awarded":  len(summary.Awarded),
			"failed":   len(summary.Failed),
		}).Warn("payout run incomplete, event left open")
		return summary, nil
	}

	if _, err := s.transition(eventID, models.EventStatusClosed); err != nil {
		return nil, err
	}

	paidIDs := append(append([]string{}, summary.Awarded...), summary.AlreadyAwarded...)
	selectedStaff, err := s.staff.GetByIDs(paidIDs)
	if err != nil {
		s.logger.WithError(err).Warn("failed to load selected staff for notification")
		selectedStaff = nil
	}
	rejectedStaff, err := s.staff.GetByIDs(rejectedIDs)
	if err != nil {
		s.logger.WithError(err).Warn("failed to load rejected staff for notification")
		rejectedStaff = nil
	}
	s.notifier.SelectionResult(*event, selectedStaff, rejectedStaff)

	s.logger.WithFields(logrus.Fields{
		"event_id": eventID,
		"awarded":  len(summary.Awarded),
		"rejected": len(rejectedIDs),
	}).Info("event closed")

	return summary, nil
}

// Delete removes an event. Only drafts can be deleted; anything later in
// the lifecycle is closed or cancelled instead so history stays intact.
func (s *EventService) Delete(eventID string) error {
	event, err := s.getEvent(eventID)
	if err != nil {
		return err
	}
	if event.Status != models.EventStatusDraft {
		return fmt.Errorf("%w: only draft events can be deleted", engine.ErrInvalidTransition)
	}
	if err := s.events.Delete(eventID); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// GetByID returns one event
func (s *EventService) GetByID(eventID string) (*models.Event, error) {
	return s.getEvent(eventID)
}

// VisibleTo reports whether a staff member may see the event: open events
// are visible to everyone, drafts to nobody, and anything else only with
// an own signup.
func (s *EventService) VisibleTo(event *models.Event, staffID string) bool {
	switch event.Status {
	case models.EventStatusOpen:
		return true
	case models.EventStatusDraft:
		return false
	}
	signups, err := s.events.ListSignups(event.ID)
	if err != nil {
		return false
	}
	return models.HasSignup(signups, staffID)
}

// List returns all events, optionally filtered by status
func (s *EventService) List(status models.EventStatus) ([]models.Event, error) {
	if status == "" {
		return s.events.List()
	}
	return s.events.ListByStatus(status)
}

// ListVisible returns the events a staff member may see: everything open,
// plus any event they have a signup on regardless of status. Drafts stay
// admin-only.
func (s *EventService) ListVisible(staffID string) ([]models.Event, error) {
	all, err := s.events.List()
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	visible := make([]models.Event, 0, len(all))
	for _, event := range all {
		if event.Status == models.EventStatusOpen {
			visible = append(visible, event)
			continue
		}
		if event.Status == models.EventStatusDraft {
			continue
		}
		signups, err := s.events.ListSignups(event.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load signups: %w", err)
		}
		if models.HasSignup(signups, staffID) {
			visible = append(visible, event)
		}
	}

	return visible, nil
}

// Signups returns an event's signup set
func (s *EventService) Signups(eventID string) ([]models.EventSignup, error) {
	if _, err := s.getEvent(eventID); err != nil {
		return nil, err
	}
	return s.events.ListSignups(eventID)
}

// SignUp admits one staff member onto an open event
func (s *EventService) SignUp(eventID, staffID string) error {
	event, err := s.getEvent(eventID)
	if err != nil {
		return err
	}

	staff, err := s.getStaff(staffID)
	if err != nil {
		return err
	}

	signups, err := s.events.ListSignups(eventID)
	if err != nil {
		return fmt.Errorf("failed to load signups: %w", err)
	}

	ladder, err := s.levelSvc.Ladder()
	if err != nil {
		return err
	}

	if err := engine.CanSignUp(*event, signups, *staff, ladder, s.nowFn()); err != nil {
		return err
	}

	inserted, err := s.events.AddSignup(eventID, staffID, s.nowFn())
	if err != nil {
		return fmt.Errorf("failed to add signup: %w", err)
	}
	if !inserted {
		// Lost a race with a concurrent signup
		return engine.ErrAlreadySignedUp
	}

	s.logger.WithFields(logrus.Fields{
		"event_id": eventID,
		"staff_id": staffID,
	}).Info("staff signed up")

	return nil
}

// CancelSignUp withdraws a signup. The same window that closes admissions
// closes withdrawals.
func (s *EventService) CancelSignUp(eventID, staffID string) error {
	event, err := s.getEvent(eventID)
	if err != nil {
		return err
	}

	signups, err := s.events.ListSignups(eventID)
	if err != nil {
		return fmt.Errorf("failed to load signups: %w", err)
	}

	if err := engine.CanCancelSignUp(*event, signups, staffID, s.nowFn()); err != nil {
		return err
	}

	removed, err := s.events.RemoveSignup(eventID, staffID)
	if err != nil {
		return fmt.Errorf("failed to remove signup: %w", err)
	}
	if !removed {
		return engine.ErrNotSignedUp
	}

	return nil
}

// BulkSignUp admits several staff members at once on behalf of an admin.
// This is a trusted override: the deadline and level gates that apply to a
// self-service signup are skipped. The event must still be open, each member
// must exist, and duplicates are still rejected. Failures are reported per
// member instead of aborting the batch.
func (s *EventService) BulkSignUp(eventID string, staffIDs []string) ([]SignupResult, error) {
	event, err := s.getEvent(eventID)
	if err != nil {
		return nil, err
	}
	if event.Status != models.EventStatusOpen {
		return nil, fmt.Errorf("%w: event is %s", engine.ErrEventNotOpen, event.Status)
	}

	results := make([]SignupResult, 0, len(staffIDs))
	for _, staffID := range staffIDs {
		err := s.adminSignUp(eventID, staffID)
		result := SignupResult{StaffID: staffID, OK: err == nil}
		if err != nil {
			result.Code = engine.CodeFor(err)
			result.Message = err.Error()
		}
		results = append(results, result)
	}

	return results, nil
}

// adminSignUp inserts one signup without the deadline or level gates
func (s *EventService) adminSignUp(eventID, staffID string) error {
	if _, err := s.getStaff(staffID); err != nil {
		return err
	}

	inserted, err := s.events.AddSignup(eventID, staffID, s.nowFn())
	if err != nil {
		return fmt.Errorf("failed to add signup: %w", err)
	}
	if !inserted {
		return engine.ErrAlreadySignedUp
	}

	s.logger.WithFields(logrus.Fields{
		"event_id": eventID,
		"staff_id": staffID,
	}).Info("staff signed up by admin")

	return nil
}

func (s *EventService) transition(eventID string, to models.EventStatus) (*models.Event, error) {
	event, err := s.getEvent(eventID)
	if err != nil {
		return nil, err
	}

	if err := engine.Transition(event, to); err != nil {
		return nil, err
	}

	if err := s.events.UpdateStatus(eventID, to); err != nil {
		return nil, fmt.Errorf("failed to update event status: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"event_id": eventID,
		"status":   to,
	}).Info("event status changed")

	return event, nil
}

func (s *EventService) validateInput(input EventInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: event name must not be empty", ErrInvalidInput)
	}
	if input.EventDate.IsZero() {
		return fmt.Errorf("%w: event date must be set", ErrInvalidInput)
	}
	if input.Points < 0 {
		return fmt.Errorf("%w: points must not be negative", ErrInvalidInput)
	}

	if _, err := s.levels.GetByID(input.RequiredLevelID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: level %s", engine.ErrNotFound, input.RequiredLevelID)
		}
		return fmt.Errorf("failed to load required level: %w", err)
	}

	return nil
}

func (s *EventService) getEvent(eventID string) (*models.Event, error) {
	event, err := s.events.GetByID(eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: event %s", engine.ErrNotFound, eventID)
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	return event, nil
}

func (s *EventService) getStaff(staffID string) (*models.StaffMember, error) {
	staff, err := s.staff.GetByID(staffID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: staff %s", engine.ErrNotFound, staffID)
		}
		return nil, fmt.Errorf("failed to load staff member: %w", err)
	}
	return staff, nil
}
