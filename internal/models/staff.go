package models

import (
	"time"

	"github.com/lib/pq"
)

// StaffStatus represents the account status of a staff member
type StaffStatus string

const (
	StaffStatusActive   StaffStatus = "active"
	StaffStatusPending  StaffStatus = "pending"
	StaffStatusInactive StaffStatus = "inactive"
)

// Role names carried in the roles array and in JWT claims
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// StaffMember represents a part-time staff member.
// Points and LevelName are materialized from the adjustments ledger and are
// only ever written by the points recompute step.
type StaffMember struct {
	ID           string         `json:"id" db:"id"`
	Email        string         `json:"email" db:"email"`
	Name         string         `json:"name" db:"name"`
	Phone        *string        `json:"phone,omitempty" db:"phone"`
	ChatID       *string        `json:"chat_id,omitempty" db:"chat_id"`
	Roles        pq.StringArray `json:"roles" db:"roles"`
	PasswordHash *string        `json:"-" db:"password_hash"`
	Points       int            `json:"points" db:"points"`
	LevelName    string         `json:"level_name" db:"level_name"`
	Status       StaffStatus    `json:"status" db:"status"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}

// HasRole reports whether the staff member carries the given role
func (s *StaffMember) HasRole(role string) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}
