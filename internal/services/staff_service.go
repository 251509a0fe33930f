package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/crewpoint/staff-events-backend/internal/engine"
	"github.com/crewpoint/staff-events-backend/internal/models"
	"github.com/crewpoint/staff-events-backend/pkg/validator"
)

// StaffService handles staff account lifecycle and profile management
type StaffService struct {
	staff     StaffStore
	chatIDVal *validator.ChatIDValidator
}

// NewStaffService creates a new StaffService
func NewStaffService(staff StaffStore) *StaffService {
	return &StaffService{
		staff:     staff,
		chatIDVal: validator.NewChatIDValidator(),
	}
}

// List returns all staff members
func (s *StaffService) List() ([]models.StaffMember, error) {
	return s.staff.List()
}

// GetByID returns one staff member
func (s *StaffService) GetByID(staffID string) (*models.StaffMember, error) {
	return s.getStaff(staffID)
}

// Activate moves an account into active status
func (s *StaffService) Activate(staffID string) (*models.StaffMember, error) {
	return s.setStatus(staffID, models.StaffStatusActive)
}

// Deactivate moves an account into inactive status. The account keeps its
// ledger and signup history; it just stops being admissible and notifiable.
func (s *StaffService) Deactivate(staffID string) (*models.StaffMember, error) {
	return s.setStatus(staffID, models.StaffStatusInactive)
}

// UpdateProfile changes a staff member's own descriptive fields
func (s *StaffService) UpdateProfile(staffID, name string, phone, chatID *string) (*models.StaffMember, error) {
	member, err := s.getStaff(staffID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
	}

	if chatID != nil && *chatID != "" {
		sanitized, err := s.chatIDVal.Validate(*chatID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid chat identifier: %v", ErrInvalidInput, err)
		}
		chatID = &sanitized
	}

	member.Name = name
	member.Phone = phone
	member.ChatID = chatID

	if err := s.staff.Update(member); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return member, nil
}

// GrantRole adds a role to an account
func (s *StaffService) GrantRole(staffID, role string) (*models.StaffMember, error) {
	if role != models.RoleAdmin && role != models.RoleStaff {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	member, err := s.getStaff(staffID)
	if err != nil {
		return nil, err
	}

	if member.HasRole(role) {
		return member, nil
	}

	member.Roles = append(member.Roles, role)
	if err := s.staff.Update(member); err != nil {
		return nil, fmt.Errorf("failed to update roles: %w", err)
	}

	return member, nil
}

func (s *StaffService) setStatus(staffID string, status models.StaffStatus) (*models.StaffMember, error) {
	member, err := s.getStaff(staffID)
	if err != nil {
		return nil, err
	}

	if err := s.staff.UpdateStatus(staffID, status); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	member.Status = status
	return member, nil
}

func (s *StaffService) getStaff(staffID string) (*models.StaffMember, error) {
	member, err := s.staff.GetByID(staffID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: staff %s", engine.ErrNotFound, staffID)
		}
		return nil, fmt.Errorf("failed to load staff member: %w", err)
	}
	return member, nil
}
