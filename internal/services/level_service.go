package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/crewpoint/staff-events-backend/internal/engine"
	"github.com/crewpoint/staff-events-backend/internal/models"
)

// LevelService handles business logic for the level ladder
type LevelService struct {
	levels LevelStore
	staff  StaffStore
}

// NewLevelService creates a new LevelService
func NewLevelService(levels LevelStore, staff StaffStore) *LevelService {
	return &LevelService{
		levels: levels,
		staff:  staff,
	}
}

// Ladder loads the current ladder from storage
func (s *LevelService) Ladder() (engine.Ladder, error) {
	levels, err := s.levels.List()
	if err != nil {
		return engine.Ladder{}, fmt.Errorf("failed to load levels: %w", err)
	}
	return engine.NewLadder(levels), nil
}

// List returns all levels ordered by rank
func (s *LevelService) List() ([]models.Level, error) {
	return s.levels.List()
}

// Create adds a new level at the bottom of the ladder.
// The resulting ladder must still satisfy the ordering rules.
func (s *LevelService) Create(name string, minPoints int) (*models.Level, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: level name must not be empty", ErrInvalidInput)
	}

	existing, err := s.levels.List()
	if err != nil {
		return nil, fmt.Errorf("failed to load levels: %w", err)
	}
	for _, l := range existing {
		if strings.EqualFold(l.Name, name) {
			return nil, fmt.Errorf("%w: level %q already exists", ErrInvalidInput, name)
		}
	}

	level := &models.Level{
		Name:      name,
		MinPoints: minPoints,
		Rank:      len(existing),
	}

	candidate := engine.NewLadder(append(existing, *level))
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	if err := s.levels.Create(level); err != nil {
		return nil, fmt.Errorf("failed to create level: %w", err)
	}

	return level, nil
}

// Update changes a level's name or minimum points.
// Rank is only changed through Reorder.
func (s *LevelService) Update(levelID, name string, minPoints int) (*models.Level, error) {
	level, err := s.getLevel(levelID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: level name must not be empty", ErrInvalidInput)
	}

	existing, err := s.levels.List()
	if err != nil {
		return nil, fmt.Errorf("failed to load levels: %w", err)
	}

	updated := make([]models.Level, 0, len(existing))
	for _, l := range existing {
		if l.ID == level.ID {
			l.Name = name
			l.MinPoints = minPoints
		} else if strings.EqualFold(l.Name, name) {
			return nil, fmt.Errorf("%w: level %q already exists", ErrInvalidInput, name)
		}
		updated = append(updated, l)
	}

	candidate := engine.NewLadder(updated)
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	level.Name = name
	level.MinPoints = minPoints
	if err := s.levels.Update(level); err != nil {
		return nil, fmt.Errorf("failed to update level: %w", err)
	}

	return level, nil
}

// Delete removes a level. A level referenced by any event or currently held
// by any staff member cannot be deleted.
func (s *LevelService) Delete(levelID string) error {
	level, err := s.getLevel(levelID)
	if err != nil {
		return err
	}

	eventRefs, err := s.levels.CountEventReferences(levelID)
	if err != nil {
		return fmt.Errorf("failed to count event references: %w", err)
	}
	if eventRefs > 0 {
		return fmt.Errorf("%w: %d events require level %q", engine.ErrLevelInUse, eventRefs, level.Name)
	}

	holders, err := s.staff.CountByLevelName(level.Name)
	if err != nil {
		return fmt.Errorf("failed to count level holders: %w", err)
	}
	if holders > 0 {
		return fmt.Errorf("%w: %d staff members hold level %q", engine.ErrLevelInUse, holders, level.Name)
	}

	if err := s.levels.Delete(levelID); err != nil {
		return fmt.Errorf("failed to delete level: %w", err)
	}

	// Renumber remaining levels so ranks stay dense
	remaining, err := s.levels.List()
	if err != nil {
		return fmt.Errorf("failed to load levels after delete: %w", err)
	}
	ids := make([]string, 0, len(remaining))
	for _, l := range remaining {
		ids = append(ids, l.ID)
	}
	if err := s.levels.Reorder(ids); err != nil {
		return fmt.Errorf("failed to renumber levels: %w", err)
	}

	return nil
}

// Reorder reassigns ranks according to orderedIDs, which must be a
// permutation of all current level identifiers (most prestigious first).
func (s *LevelService) Reorder(orderedIDs []string) error {
	existing, err := s.levels.List()
	if err != nil {
		return fmt.Errorf("failed to load levels: %w", err)
	}

	if len(orderedIDs) != len(existing) {
		return fmt.Errorf("%w: reorder must list all %d levels, got %d", ErrInvalidInput, len(existing), len(orderedIDs))
	}

	byID := make(map[string]models.Level, len(existing))
	for _, l := range existing {
		byID[l.ID] = l
	}

	reordered := make([]models.Level, 0, len(orderedIDs))
	for i, id := range orderedIDs {
		l, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: level %s", engine.ErrNotFound, id)
		}
		delete(byID, id)
		l.Rank = i
		reordered = append(reordered, l)
	}

	candidate := engine.NewLadder(reordered)
	if err := candidate.Validate(); err != nil {
		return err
	}

	if err := s.levels.Reorder(orderedIDs); err != nil {
		return fmt.Errorf("failed to reorder levels: %w", err)
	}

	return nil
}

func (s *LevelService) getLevel(levelID string) (*models.Level, error) {
	level, err := s.levels.GetByID(levelID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: level %s", engine.ErrNotFound, levelID)
		}
		return nil, fmt.Errorf("failed to load level: %w", err)
	}
	return level, nil
}
