package models

import "time"

// PointAdjustment is one immutable entry in the points ledger.
// Entries are append-only; corrections are written as new compensating
// entries, never by mutating or deleting an existing row.
type PointAdjustment struct {
	ID        string    `json:"id" db:"id"`
	StaffID   string    `json:"staff_id" db:"staff_id"`
	Delta     int       `json:"delta" db:"delta"`
	Reason    string    `json:"reason" db:"reason"`
	ActorID   string    `json:"actor_id" db:"actor_id"`
	EventID   *string   `json:"event_id,omitempty" db:"event_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
