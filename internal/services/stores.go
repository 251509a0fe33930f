package services

import (
	"time"

	"github.com/crewpoint/staff-events-backend/internal/models"
)

// Store interfaces cover exactly the repository methods the services call.
// The database package satisfies them; tests substitute in-memory fakes.

// EventStore persists events and their signup sets
type EventStore interface {
	Create(event *models.Event) error
	GetByID(eventID string) (*models.Event, error)
	List() ([]models.Event, error)
	ListByStatus(status models.EventStatus) ([]models.Event, error)
	Update(event *models.Event) error
	UpdateStatus(eventID string, status models.EventStatus) error
	Delete(eventID string) error
	AddSignup(eventID, staffID string, signedUpAt time.Time) (bool, error)
	RemoveSignup(eventID, staffID string) (bool, error)
	ListSignups(eventID string) ([]models.EventSignup, error)
	MarkAwarded(eventID, staffID string) (bool, error)
}

// StaffStore persists staff accounts and their materialized standing
type StaffStore interface {
	Create(staff *models.StaffMember) error
	GetByID(staffID string) (*models.StaffMember, error)
	GetByEmail(email string) (*models.StaffMember, error)
	List() ([]models.StaffMember, error)
	ListActive() ([]models.StaffMember, error)
	GetByIDs(staffIDs []string) ([]models.StaffMember, error)
	Update(staff *models.StaffMember) error
	UpdateStatus(staffID string, status models.StaffStatus) error
	UpdateStanding(staffID string, points int, levelName string) error
	CountByLevelName(levelName string) (int, error)
}

// LevelStore persists the level ladder
type LevelStore interface {
	List() ([]models.Level, error)
	GetByID(levelID string) (*models.Level, error)
	GetByName(name string) (*models.Level, error)
	Create(level *models.Level) error
	Update(level *models.Level) error
	Delete(levelID string) error
	CountEventReferences(levelID string) (int, error)
	Reorder(orderedIDs []string) error
}

// AdjustmentStore persists the append-only points ledger
type AdjustmentStore interface {
	Append(adj *models.PointAdjustment) error
	ListByStaff(staffID string) ([]models.PointAdjustment, error)
	SumForStaff(staffID string) (int, error)
}

// AuditStore persists the audit trail
type AuditStore interface {
	Insert(entry *models.AuditLog) error
	ListRecent(limit int) ([]models.AuditLog, error)
}

// Notifier fans notifications out to eligible staff. Implementations must
// not fail the calling operation: delivery problems are logged, not returned.
type Notifier interface {
	EventOpened(event models.Event)
	EventCancelled(event models.Event)
	EventReinstated(event models.Event)
	SelectionResult(event models.Event, selected, rejected []models.StaffMember)
	PointsAwarded(staff models.StaffMember, delta, total int)
	LevelUp(staff models.StaffMember, levelName string, total int)
}

// NopNotifier is a Notifier that does nothing. Used when notifications are
// disabled and in tests that don't care about delivery.
type NopNotifier struct{}

func (NopNotifier) EventOpened(models.Event)                                        {}
func (NopNotifier) EventCancelled(models.Event)                                     {}
func (NopNotifier) EventReinstated(models.Event)                                    {}
func (NopNotifier) SelectionResult(models.Event, []models.StaffMember, []models.StaffMember) {}
func (NopNotifier) PointsAwarded(models.StaffMember, int, int)                      {}
func (NopNotifier) LevelUp(models.StaffMember, string, int)                         {}
