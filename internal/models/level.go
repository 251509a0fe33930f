package models

import "time"

// Level represents one tier of the level ladder.
// Rank 0 is the most prestigious tier; higher rank numbers are lower tiers.
type Level struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	MinPoints int       `json:"min_points" db:"min_points"`
	Rank      int       `json:"rank" db:"rank"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
