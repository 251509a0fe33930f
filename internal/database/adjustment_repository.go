package database

import (
	"database/sql"
	"fmt"

	"github.com/crewpoint/staff-events-backend/internal/models"
	"github.com/google/uuid"
)

// AdjustmentRepository handles the append-only point_adjustments ledger.
// There are deliberately no update or delete operations; corrections are
// appended as compensating entries.
type AdjustmentRepository struct {
	db DB
}

// NewAdjustmentRepository creates a new AdjustmentRepository
func NewAdjustmentRepository(db DB) *AdjustmentRepository {
	return &AdjustmentRepository{db: db}
}

// Append writes a new ledger entry
func (r *AdjustmentRepository) Append(adj *models.PointAdjustment) error {
	query := `
		INSERT INTO point_adjustments (id, staff_id, delta, reason, actor_id, event_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	if adj.ID == "" {
		adj.ID = uuid.New().String()
	}

	err := r.db.QueryRow(
		query, adj.ID, adj.StaffID, adj.Delta, adj.Reason, adj.ActorID, adj.EventID,
	).Scan(&adj.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to append adjustment: %w", err)
	}

	return nil
}

// ListByStaff retrieves the full ledger for a staff member, newest first
func (r *AdjustmentRepository) ListByStaff(staffID string) ([]models.PointAdjustment, error) {
	query := `
		SELECT id, staff_id, delta, reason, actor_id, event_id, created_at
		FROM point_adjustments
		WHERE staff_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	adjustments := []models.PointAdjustment{}
	for rows.Next() {
		var adj models.PointAdjustment
		var eventID sql.NullString

		err := rows.Scan(&adj.ID, &adj.StaffID, &adj.Delta, &adj.Reason, &adj.ActorID, &eventID, &adj.CreatedAt)
		if err != nil {
			return nil, err
		}

		if eventID.Valid {
			adj.EventID = &eventID.String
		}

		adjustments = append(adjustments, adj)
	}

	return adjustments, rows.Err()
}

// SumForStaff returns the raw sum of all ledger deltas for a staff member.
// The sum may be negative; clamping is the caller's policy.
func (r *AdjustmentRepository) SumForStaff(staffID string) (int, error) {
	query := `
		SELECT COALESCE(SUM(delta), 0)
		FROM point_adjustments
		WHERE staff_id = $1
	`

	var sum int
	err := r.db.QueryRow(query, staffID).Scan(&sum)
	return sum, err
}
