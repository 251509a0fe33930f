package models

import (
	"time"
)

// EventStatus represents the lifecycle status of an event
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusOpen      EventStatus = "open"
	EventStatusClosed    EventStatus = "closed"
	EventStatusCancelled EventStatus = "cancelled"
)

// Event represents a scheduled event staff can sign up for
type Event struct {
	ID              string      `json:"id" db:"id"`
	Name            string      `json:"name" db:"name"`
	EventDate       time.Time   `json:"event_date" db:"event_date"`
	EndDate         *time.Time  `json:"end_date,omitempty" db:"end_date"`
	StartTime       string      `json:"start_time" db:"start_time"`
	Duration        *string     `json:"duration,omitempty" db:"duration"`
	Location        string      `json:"location" db:"location"`
	Description     *string     `json:"description,omitempty" db:"description"`
	Points          int         `json:"points" db:"points"`
	RequiredLevelID string      `json:"required_level_id" db:"required_level_id"`
	SignupDeadline  *time.Time  `json:"signup_deadline,omitempty" db:"signup_deadline"`
	Status          EventStatus `json:"status" db:"status"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

// EventSignup represents one staff member's signup on an event.
// Confirmed and PointsAwarded only ever move false -> true; a row with
// PointsAwarded set is the marker that the participation has been paid.
type EventSignup struct {
	EventID       string    `json:"event_id" db:"event_id"`
	StaffID       string    `json:"staff_id" db:"staff_id"`
	SignedUpAt    time.Time `json:"signed_up_at" db:"signed_up_at"`
	Confirmed     bool      `json:"confirmed" db:"confirmed"`
	PointsAwarded bool      `json:"points_awarded" db:"points_awarded"`
}

// HasSignup reports whether staffID appears in the signup set
func HasSignup(signups []EventSignup, staffID string) bool {
	for _, s := range signups {
		if s.StaffID == staffID {
			return true
		}
	}
	return false
}
