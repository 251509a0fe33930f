package database

import (
	"database/sql"

	"github.com/crewpoint/staff-events-backend/internal/models"
)

// AuditRepository handles database operations for the audit_logs table
type AuditRepository struct {
	db DB
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Insert writes an audit log entry
func (r *AuditRepository) Insert(entry *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (actor_id, action, entity_type, entity_id, ip_address, user_agent, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	return r.db.QueryRow(
		query,
		entry.ActorID, entry.Action, entry.EntityType, entry.EntityID,
		entry.IPAddress, entry.UserAgent, entry.Details,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// ListRecent retrieves the most recent audit entries
func (r *AuditRepository) ListRecent(limit int) ([]models.AuditLog, error) {
	query := `
		SELECT id, actor_id, action, entity_type, entity_id, ip_address, user_agent, details, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.AuditLog{}
	for rows.Next() {
		var e models.AuditLog
		var actorID, entityID, ipAddress, userAgent, details sql.NullString

		err := rows.Scan(&e.ID, &actorID, &e.Action, &e.EntityType, &entityID, &ipAddress, &userAgent, &details, &e.CreatedAt)
		if err != nil {
			return nil, err
		}

		if actorID.Valid {
			e.ActorID = &actorID.String
		}
		if entityID.Valid {
			e.EntityID = &entityID.String
		}
		if ipAddress.Valid {
			e.IPAddress = &ipAddress.String
		}
		if userAgent.Valid {
			e.UserAgent = &userAgent.String
		}
		if details.Valid {
			e.Details = &details.String
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}
