package database

import (
	"database/sql"
	"fmt"

	"github.com/crewpoint/staff-events-backend/internal/models"
	"github.com/google/uuid"
)

// LevelRepository handles database operations for the levels table
type LevelRepository struct {
	db DB
}

// NewLevelRepository creates a new LevelRepository
func NewLevelRepository(db DB) *LevelRepository {
	return &LevelRepository{db: db}
}

const levelColumns = `id, name, min_points, rank, created_at, updated_at`

// List retrieves all levels ordered by rank (0 = most prestigious first)
func (r *LevelRepository) List() ([]models.Level, error) {
	query := `SELECT ` + levelColumns + ` FROM levels ORDER BY rank`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	levels := []models.Level{}
	for rows.Next() {
		var lvl models.Level
		if err := rows.Scan(&lvl.ID, &lvl.Name, &lvl.MinPoints, &lvl.Rank, &lvl.CreatedAt, &lvl.UpdatedAt); err != nil {
			return nil, err
		}
		levels = append(levels, lvl)
	}

	return levels, rows.Err()
}

// GetByID retrieves a level by ID
func (r *LevelRepository) GetByID(levelID string) (*models.Level, error) {
	return r.scanLevel(r.db.QueryRow(
		`SELECT `+levelColumns+` FROM levels WHERE id = $1`, levelID,
	))
}

// GetByName retrieves a level by name
func (r *LevelRepository) GetByName(name string) (*models.Level, error) {
	return r.scanLevel(r.db.QueryRow(
		`SELECT `+levelColumns+` FROM levels WHERE name = $1`, name,
	))
}

// Create inserts a new level
func (r *LevelRepository) Create(level *models.Level) error {
	query := `
		INSERT INTO levels (id, name, min_points, rank)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	if level.ID == "" {
		level.ID = uuid.New().String()
	}

	err := r.db.QueryRow(
		query, level.ID, level.Name, level.MinPoints, level.Rank,
	).Scan(&level.CreatedAt, &level.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create level: %w", err)
	}

	return nil
}

// Update replaces a level's name and minimum points. Rank changes go through
// Reorder so the dense-rank invariant is preserved.
func (r *LevelRepository) Update(level *models.Level) error {
	query := `
		UPDATE levels
		SET name = $2, min_points = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(query, level.ID, level.Name, level.MinPoints).Scan(&level.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("level not found")
	}

	return err
}

// Delete removes a level
func (r *LevelRepository) Delete(levelID string) error {
	result, err := r.db.Exec(`DELETE FROM levels WHERE id = $1`, levelID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return fmt.Errorf("level not found")
	}

	return nil
}

// CountEventReferences counts events requiring the level
func (r *LevelRepository) CountEventReferences(levelID string) (int, error) {
	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM events WHERE required_level_id = $1`, levelID,
	).Scan(&count)
	return count, err
}

// Reorder renumbers the levels into the given order, id at index 0 becoming
// rank 0. Ranks are first shifted out of the way so the renumbering never
// collides with the unique rank constraint mid-flight.
func (r *LevelRepository) Reorder(orderedIDs []string) error {
	for i, id := range orderedIDs {
		if _, err := r.db.Exec(
			`UPDATE levels SET rank = $2 WHERE id = $1`, id, i+len(orderedIDs),
		); err != nil {
			return fmt.Errorf("failed to stage rank for level %s: %w", id, err)
		}
	}

	for i, id := range orderedIDs {
		if _, err := r.db.Exec(
			`UPDATE levels SET rank = $2, updated_at = NOW() WHERE id = $1`, id, i,
		); err != nil {
			return fmt.Errorf("failed to set rank for level %s: %w", id, err)
		}
	}

	return nil
}

// scanLevel scans a single level
func (r *LevelRepository) scanLevel(row scanner) (*models.Level, error) {
	level := &models.Level{}
	err := row.Scan(&level.ID, &level.Name, &level.MinPoints, &level.Rank, &level.CreatedAt, &level.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return level, nil
}
