package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/crewpoint/staff-events-backend/internal/models"
	"github.com/google/uuid"
)

// EventRepository handles database operations for the events and
// event_signups tables
type EventRepository struct {
	db DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, name, event_date, end_date, start_time, duration,
	   location, description, points, required_level_id, signup_deadline,
	   status, created_at, updated_at`

// Create inserts a new event
func (r *EventRepository) Create(event *models.Event) error {
	query := `
		INSERT INTO events (
			id, name, event_date, end_date, start_time, duration,
			location, description, points, required_level_id,
			signup_deadline, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
		RETURNING created_at, updated_at
	`

	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	err := r.db.QueryRow(
		query,
		event.ID, event.Name, event.EventDate, event.EndDate, event.StartTime, event.Duration,
		event.Location, event.Description, event.Points, event.RequiredLevelID,
		event.SignupDeadline, event.Status,
	).Scan(&event.CreatedAt, &event.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(eventID string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return r.scanEvent(r.db.QueryRow(query, eventID))
}

// List retrieves all events, newest first
func (r *EventRepository) List() ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY event_date DESC, created_at DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanEvents(rows)
}

// ListByStatus retrieves all events with the given status
func (r *EventRepository) ListByStatus(status models.EventStatus) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE status = $1 ORDER BY event_date, created_at`

	rows, err := r.db.Query(query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanEvents(rows)
}

// Update replaces the descriptive fields of an event. Status and the signup
// set are managed by dedicated operations.
func (r *EventRepository) Update(event *models.Event) error {
	query := `
		UPDATE events
		SET name = $2, event_date = $3, end_date = $4, start_time = $5,
			duration = $6, location = $7, description = $8, points = $9,
			required_level_id = $10, signup_deadline = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		query,
		event.ID, event.Name, event.EventDate, event.EndDate, event.StartTime,
		event.Duration, event.Location, event.Description, event.Points,
		event.RequiredLevelID, event.SignupDeadline,
	).Scan(&event.UpdatedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("event not found")
	}

	return err
}

// UpdateStatus sets the event status
func (r *EventRepository) UpdateStatus(eventID string, status models.EventStatus) error {
	query := `
		UPDATE events
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, eventID, status)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return fmt.Errorf("event not found")
	}

	return nil
}

// Delete hard-removes an event and its signups
func (r *EventRepository) Delete(eventID string) error {
	if _, err := r.db.Exec(`DELETE FROM event_signups WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("failed to delete signups: %w", err)
	}

	result, err := r.db.Exec(`DELETE FROM events WHERE id = $1`, eventID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return fmt.Errorf("event not found")
	}

	return nil
}

// AddSignup records a signup. The unique (event_id, staff_id) constraint
// makes the duplicate check atomic with the insert: a concurrent second
// attempt hits the conflict clause and is reported as not inserted.
func (r *EventRepository) AddSignup(eventID, staffID string, signedUpAt time.Time) (bool, error) {
	query := `
		INSERT INTO event_signups (event_id, staff_id, signed_up_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id, staff_id) DO NOTHING
	`

	result, err := r.db.Exec(query, eventID, staffID, signedUpAt)
	if err != nil {
		return false, fmt.Errorf("failed to add signup: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

// RemoveSignup deletes a signup row, including any confirmed/awarded marks
// it carries, so no orphaned references remain
func (r *EventRepository) RemoveSignup(eventID, staffID string) (bool, error) {
	result, err := r.db.Exec(
		`DELETE FROM event_signups WHERE event_id = $1 AND staff_id = $2`,
		eventID, staffID,
	)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

// ListSignups retrieves the full signup set for an event
func (r *EventRepository) ListSignups(eventID string) ([]models.EventSignup, error) {
	query := `
		SELECT event_id, staff_id, signed_up_at, confirmed, points_awarded
		FROM event_signups
		WHERE event_id = $1
		ORDER BY signed_up_at
	`

	rows, err := r.db.Query(query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	signups := []models.EventSignup{}
	for rows.Next() {
		var s models.EventSignup
		if err := rows.Scan(&s.EventID, &s.StaffID, &s.SignedUpAt, &s.Confirmed, &s.PointsAwarded); err != nil {
			return nil, err
		}
		signups = append(signups, s)
	}

	return signups, rows.Err()
}

// MarkAwarded marks a signup as confirmed with points paid. The
// points_awarded = FALSE predicate is the idempotency guard: it reports
// false when the row was already paid, so a second confirmation attempt
// becomes a no-op instead of a double award.
func (r *EventRepository) MarkAwarded(eventID, staffID string) (bool, error) {
	query := `
		UPDATE event_signups
		SET confirmed = TRUE, points_awarded = TRUE
		WHERE event_id = $1 AND staff_id = $2 AND points_awarded = FALSE
	`

	result, err := r.db.Exec(query, eventID, staffID)
	if err != nil {
		return false, fmt.Errorf("failed to mark signup awarded: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

// scanEvent scans a single event
func (r *EventRepository) scanEvent(row scanner) (*models.Event, error) {
	event := &models.Event{}
	var endDate sql.NullTime
	var duration sql.NullString
	var description sql.NullString
	var signupDeadline sql.NullTime

	err := row.Scan(
		&event.ID, &event.Name, &event.EventDate, &endDate, &event.StartTime, &duration,
		&event.Location, &description, &event.Points, &event.RequiredLevelID, &signupDeadline,
		&event.Status, &event.CreatedAt, &event.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	if endDate.Valid {
		event.EndDate = &endDate.Time
	}
	if duration.Valid {
		event.Duration = &duration.String
	}
	if description.Valid {
		event.Description = &description.String
	}
	if signupDeadline.Valid {
		event.SignupDeadline = &signupDeadline.Time
	}

	return event, nil
}

// scanEvents scans multiple events from rows
func (r *EventRepository) scanEvents(rows *sql.Rows) ([]models.Event, error) {
	events := []models.Event{}

	for rows.Next() {
		event, err := r.scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}

	return events, rows.Err()
}
