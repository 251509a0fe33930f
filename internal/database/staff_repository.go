package database

import (
	"database/sql"
	"fmt"

	"github.com/crewpoint/staff-events-backend/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// StaffRepository handles database operations for the staff_members table
type StaffRepository struct {
	db DB
}

// NewStaffRepository creates a new StaffRepository
func NewStaffRepository(db DB) *StaffRepository {
	return &StaffRepository{db: db}
}

const staffColumns = `id, email, name, phone, chat_id, roles, password_hash,
	   points, level_name, status, created_at, updated_at`

// Create inserts a new staff member
func (r *StaffRepository) Create(staff *models.StaffMember) error {
	query := `
		INSERT INTO staff_members (
			id, email, name, phone, chat_id, roles, password_hash,
			points, level_name, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
		RETURNING created_at, updated_at
	`

	if staff.ID == "" {
		staff.ID = uuid.New().String()
	}
	if len(staff.Roles) == 0 {
		staff.Roles = pq.StringArray{models.RoleStaff}
	}

	err := r.db.QueryRow(
		query,
		staff.ID, staff.Email, staff.Name, staff.Phone, staff.ChatID, staff.Roles,
		staff.PasswordHash, staff.Points, staff.LevelName, staff.Status,
	).Scan(&staff.CreatedAt, &staff.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create staff member: %w", err)
	}

	return nil
}

// GetByID retrieves a staff member by ID
func (r *StaffRepository) GetByID(staffID string) (*models.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_members WHERE id = $1`
	return r.scanStaff(r.db.QueryRow(query, staffID))
}

// GetByEmail retrieves a staff member by email
func (r *StaffRepository) GetByEmail(email string) (*models.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_members WHERE email = $1`
	return r.scanStaff(r.db.QueryRow(query, email))
}

// List retrieves all staff members
func (r *StaffRepository) List() ([]models.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_members ORDER BY name`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanStaffList(rows)
}

// ListActive retrieves all staff members with active accounts
func (r *StaffRepository) ListActive() ([]models.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_members WHERE status = 'active' ORDER BY name`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanStaffList(rows)
}

// GetByIDs retrieves the staff members for a set of ids
func (r *StaffRepository) GetByIDs(staffIDs []string) ([]models.StaffMember, error) {
	if len(staffIDs) == 0 {
		return []models.StaffMember{}, nil
	}

	query := `SELECT ` + staffColumns + ` FROM staff_members WHERE id = ANY($1) ORDER BY name`

	rows, err := r.db.Query(query, pq.Array(staffIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanStaffList(rows)
}

// Update replaces the profile fields of a staff member
func (r *StaffRepository) Update(staff *models.StaffMember) error {
	query := `
		UPDATE staff_members
		SET email = $2, name = $3, phone = $4, chat_id = $5, roles = $6,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		query,
		staff.ID, staff.Email, staff.Name, staff.Phone, staff.ChatID, staff.Roles,
	).Scan(&staff.UpdatedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("staff member not found")
	}

	return err
}

// UpdateStatus sets the account status
func (r *StaffRepository) UpdateStatus(staffID string, status models.StaffStatus) error {
	result, err := r.db.Exec(
		`UPDATE staff_members SET status = $2, updated_at = NOW() WHERE id = $1`,
		staffID, status,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return fmt.Errorf("staff member not found")
	}

	return nil
}

// UpdateStanding writes the materialized point total and level name. This is
// the only writer of these columns; the points recompute step derives both
// from the ledger on every append.
func (r *StaffRepository) UpdateStanding(staffID string, points int, levelName string) error {
	result, err := r.db.Exec(
		`UPDATE staff_members SET points = $2, level_name = $3, updated_at = NOW() WHERE id = $1`,
		staffID, points, levelName,
	)
	if err != nil {
		return fmt.Errorf("failed to update standing: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return fmt.Errorf("staff member not found")
	}

	return nil
}

// CountByLevelName counts staff members currently at the given level
func (r *StaffRepository) CountByLevelName(levelName string) (int, error) {
	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM staff_members WHERE level_name = $1`,
		levelName,
	).Scan(&count)
	return count, err
}

// scanStaff scans a single staff member
func (r *StaffRepository) scanStaff(row scanner) (*models.StaffMember, error) {
	staff := &models.StaffMember{}
	var phone sql.NullString
	var chatID sql.NullString
	var passwordHash sql.NullString

	err := row.Scan(
		&staff.ID, &staff.Email, &staff.Name, &phone, &chatID, &staff.Roles,
		&passwordHash, &staff.Points, &staff.LevelName, &staff.Status,
		&staff.CreatedAt, &staff.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	if phone.Valid {
		staff.Phone = &phone.String
	}
	if chatID.Valid {
		staff.ChatID = &chatID.String
	}
	if passwordHash.Valid {
		staff.PasswordHash = &passwordHash.String
	}

	return staff, nil
}

// scanStaffList scans multiple staff members from rows
func (r *StaffRepository) scanStaffList(rows *sql.Rows) ([]models.StaffMember, error) {
	staffList := []models.StaffMember{}

	for rows.Next() {
		staff, err := r.scanStaff(rows)
		if err != nil {
			return nil, err
		}
		staffList = append(staffList, *staff)
	}

	return staffList, rows.Err()
}
