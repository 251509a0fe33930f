package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/crewpoint/staff-events-backend/internal/engine"
	"github.com/crewpoint/staff-events-backend/internal/models"
)

// Standing is a staff member's materialized points balance and level
type Standing struct {
	StaffID   string `json:"staff_id"`
	Points    int    `json:"points"`
	LevelName string `json:"level_name"`
	LeveledUp bool   `json:"leveled_up"`
}

// PointsService handles the points ledger and derived standings
type PointsService struct {
	staff       StaffStore
	events      EventStore
	adjustments AdjustmentStore
	levelSvc    *LevelService
	notifier    Notifier
	logger      *logrus.Logger
}

// NewPointsService creates a new PointsService
func NewPointsService(
	staff StaffStore,
	events EventStore,
	adjustments AdjustmentStore,
	levelSvc *LevelService,
	notifier Notifier,
	logger *logrus.Logger,
) *PointsService {
	return &PointsService{
		staff:       staff,
		events:      events,
		adjustments: adjustments,
		levelSvc:    levelSvc,
		notifier:    notifier,
		logger:      logger,
	}
}

// AdjustPoints appends a manual ledger entry and recomputes the standing.
// The reason is mandatory; corrections are new entries, never edits.
func (s *PointsService) AdjustPoints(staffID string, delta int, reason, actorID string, eventID *string) (*models.PointAdjustment, Standing, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, Standing{}, engine.ErrInvalidReason
	}

	staff, err := s.getStaff(staffID)
	if err != nil {
		return nil, Standing{}, err
	}

	adj := &models.PointAdjustment{
		StaffID: staff.ID,
		Delta:   delta,
		Reason:  reason,
		ActorID: actorID,
		EventID: eventID,
	}
	if err := s.adjustments.Append(adj); err != nil {
		return nil, Standing{}, fmt.Errorf("failed to append adjustment: %w", err)
	}

	standing, err := s.Recompute(staff.ID)
	if err != nil {
		return nil, Standing{}, err
	}

	if delta > 0 {
		s.notifier.PointsAwarded(*staff, delta, standing.Points)
	}
	if standing.LeveledUp {
		s.notifier.LevelUp(*staff, standing.LevelName, standing.Points)
	}

	return adj, standing, nil
}

// Recompute rebuilds a staff member's standing from the ledger.
// Negative ledger totals are clamped to zero before the level lookup, so a
// run of corrections can never push a balance below the bottom tier.
func (s *PointsService) Recompute(staffID string) (Standing, error) {
	staff, err := s.getStaff(staffID)
	if err != nil {
		return Standing{}, err
	}

	total, err := s.adjustments.SumForStaff(staffID)
	if err != nil {
		return Standing{}, fmt.Errorf("failed to sum ledger: %w", err)
	}
	if total < 0 {
		total = 0
	}

	ladder, err := s.levelSvc.Ladder()
	if err != nil {
		return Standing{}, err
	}

	level := ladder.LevelFor(total)

	prevLevel, hadPrev := ladder.LevelByName(staff.LevelName)
	leveledUp := hadPrev && level.Rank < prevLevel.Rank

	if err := s.staff.UpdateStanding(staffID, total, level.Name); err != nil {
		return Standing{}, fmt.Errorf("failed to update standing: %w", err)
	}

	return Standing{
		StaffID:   staffID,
		Points:    total,
		LevelName: level.Name,
		LeveledUp: leveledUp,
	}, nil
}

// History returns a staff member's ledger entries, newest first
func (s *PointsService) History(staffID string) ([]models.PointAdjustment, error) {
	if _, err := s.getStaff(staffID); err != nil {
		return nil, err
	}
	return s.adjustments.ListByStaff(staffID)
}

// Confirm marks one signup as confirmed and awards the event's points.
// Awarding is idempotent: a second call for the same pair is a no-op and
// returns awarded=false without error.
func (s *PointsService) Confirm(eventID, staffID, actorID string) (bool, Standing, error) {
	event, err := s.events.GetByID(eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, Standing{}, fmt.Errorf("%w: event %s", engine.ErrNotFound, eventID)
		}
		return false, Standing{}, fmt.Errorf("failed to load event: %w", err)
	}

	signups, err := s.events.ListSignups(eventID)
	if err != nil {
		return false, Standing{}, fmt.Errorf("failed to load signups: %w", err)
	}
	if !models.HasSignup(signups, staffID) {
		return false, Standing{}, engine.ErrNotSignedUp
	}

	staff, err := s.getStaff(staffID)
	if err != nil {
		return false, Standing{}, err
	}

	// The awarded flag only flips once everything needed for the payout is
	// loaded, so a failure here leaves the signup retryable.
	awarded, err := s.events.MarkAwarded(eventID, staffID)
	if err != nil {
		return false, Standing{}, fmt.Errorf("failed to mark signup awarded: %w", err)
	}
	if !awarded {
		// Already paid out for this event
		standing, err := s.Recompute(staffID)
		return false, standing, err
	}

	adj := &models.PointAdjustment{
		StaffID: staffID,
		Delta:   event.Points,
		Reason:  fmt.Sprintf("event participation: %s", event.Name),
		ActorID: actorID,
		EventID: &event.ID,
	}
	if err := s.adjustments.Append(adj); err != nil {
		return false, Standing{}, fmt.Errorf("failed to append award entry: %w", err)
	}

	standing, err := s.Recompute(staffID)
	if err != nil {
		return false, Standing{}, err
	}

	s.logger.WithFields(logrus.Fields{
		"event_id": eventID,
		"staff_id": staffID,
		"points":   event.Points,
		"total":    standing.Points,
	}).Info("participation confirmed")

	s.notifier.PointsAwarded(*staff, event.Points, standing.Points)
	if standing.LeveledUp {
		s.notifier.LevelUp(*staff, standing.LevelName, standing.Points)
	}

	return true, standing, nil
}

// ConfirmAllSummary reports the outcome of confirming every signup on an event
type ConfirmAllSummary struct {
	EventID        string         `json:"event_id"`
	Confirmed      []string       `json:"confirmed"`
	AlreadyAwarded []string       `json:"already_awarded"`
	LeveledUp      []string       `json:"leveled_up,omitempty"`
	Failed         []SignupResult `json:"failed,omitempty"`
}

// ConfirmAll confirms every signup on the event that has not been paid yet.
// Per-staff failures are collected in the summary; one bad record never
// aborts the rest of the payout run.
func (s *PointsService) ConfirmAll(eventID, actorID string) (*ConfirmAllSummary, error) {
	if _, err := s.events.GetByID(eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: event %s", engine.ErrNotFound, eventID)
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	signups, err := s.events.ListSignups(eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load signups: %w", err)
	}

	summary := &ConfirmAllSummary{EventID: eventID}
	for _, signup := range signups {
		awarded, standing, err := s.Confirm(eventID, signup.StaffID, actorID)
		switch {
		case err != nil:
			summary.Failed = append(summary.Failed, SignupResult{
				StaffID: signup.StaffID,
				Code:    engine.CodeFor(err),
				Message: err.Error(),
			})
		case awarded:
			summary.Confirmed = append(summary.Confirmed, signup.StaffID)
			if standing.LeveledUp {
				summary.LeveledUp = append(summary.LeveledUp, signup.StaffID)
			}
		default:
			summary.AlreadyAwarded = append(summary.AlreadyAwarded, signup.StaffID)
		}
	}

	return summary, nil
}

func (s *PointsService) getStaff(staffID string) (*models.StaffMember, error) {
	staff, err := s.staff.GetByID(staffID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: staff %s", engine.ErrNotFound, staffID)
		}
		return nil, fmt.Errorf("failed to load staff member: %w", err)
	}
	return staff, nil
}
