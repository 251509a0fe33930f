package engine

import (
	"fmt"
	"sort"

	"github.com/crewpoint/staff-events-backend/internal/models"
)

// Ladder is an ordered view over the configured levels. Rank 0 is the most
// prestigious tier. The ladder is a pure lookup structure; it never touches
// storage.
type Ladder struct {
	levels []models.Level // sorted by rank ascending
}

// NewLadder builds a ladder from the given levels, sorting by rank
func NewLadder(levels []models.Level) Ladder {
	sorted := make([]models.Level, len(levels))
	copy(sorted, levels)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Rank < sorted[j].Rank
	})
	return Ladder{levels: sorted}
}

// Levels returns the levels ordered by rank ascending
func (l Ladder) Levels() []models.Level {
	return l.levels
}

// Validate checks the ladder invariants: ranks are dense starting at zero,
// names are unique and minimum points never increase as rank increases.
func (l Ladder) Validate() error {
	if len(l.levels) == 0 {
		return fmt.Errorf("ladder has no levels")
	}
	seen := make(map[string]bool, len(l.levels))
	for i, lvl := range l.levels {
		if lvl.Rank != i {
			return fmt.Errorf("ladder ranks are not dense: expected rank %d, got %d (%s)", i, lvl.Rank, lvl.Name)
		}
		if seen[lvl.Name] {
			return fmt.Errorf("duplicate level name %q", lvl.Name)
		}
		seen[lvl.Name] = true
		if i > 0 && lvl.MinPoints > l.levels[i-1].MinPoints {
			return fmt.Errorf("level %q (rank %d) requires more points than the tier above it", lvl.Name, lvl.Rank)
		}
	}
	return nil
}

// LevelFor returns the level a point total maps to: walking from rank 0
// downward, the first level whose minimum is within reach. Falls back to the
// lowest tier, so every non-negative total maps to exactly one level.
func (l Ladder) LevelFor(points int) models.Level {
	for _, lvl := range l.levels {
		if lvl.MinPoints <= points {
			return lvl
		}
	}
	return l.levels[len(l.levels)-1]
}

// LevelByID looks up a level by id
func (l Ladder) LevelByID(id string) (models.Level, bool) {
	for _, lvl := range l.levels {
		if lvl.ID == id {
			return lvl, true
		}
	}
	return models.Level{}, false
}

// LevelByName looks up a level by name
func (l Ladder) LevelByName(name string) (models.Level, bool) {
	for _, lvl := range l.levels {
		if lvl.Name == name {
			return lvl, true
		}
	}
	return models.Level{}, false
}

// IsEligible reports whether a staff member at staffLevel may see and sign
// up for an event requiring requiredLevel. Staff are gated out only from
// tiers more exclusive than their own: eligible iff their rank number is
// less than or equal to the required rank number.
func IsEligible(staffLevel, requiredLevel models.Level) bool {
	return staffLevel.Rank <= requiredLevel.Rank
}
