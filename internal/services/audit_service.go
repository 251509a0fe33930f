package services

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/crewpoint/staff-events-backend/internal/models"
	"github.com/crewpoint/staff-events-backend/internal/utils"
)

// AuditService records administrative actions. Recording can be switched
// off entirely via configuration; a disabled service is a no-op.
type AuditService struct {
	store   AuditStore
	enabled bool
	logger  *logrus.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(store AuditStore, enabled bool, logger *logrus.Logger) *AuditService {
	return &AuditService{
		store:   store,
		enabled: enabled,
		logger:  logger,
	}
}

// Entry describes one action to record
type Entry struct {
	ActorID    *string
	Action     string
	EntityType string
	EntityID   *string
	IPAddress  string
	UserAgent  string
	Details    map[string]interface{}
}

// Record writes one audit entry. Failures are logged but never returned,
// so auditing can't break the action it describes.
func (s *AuditService) Record(entry Entry) {
	if !s.enabled {
		return
	}

	details := entry.Details
	if details == nil {
		details = map[string]interface{}{}
	}
	if entry.UserAgent != "" {
		details["device_info"] = utils.ParseUserAgent(entry.UserAgent)
	}

	var detailsJSON *string
	if len(details) > 0 {
		raw, err := json.Marshal(details)
		if err != nil {
			s.logger.WithError(err).Warn("failed to encode audit details")
		} else {
			str := string(raw)
			detailsJSON = &str
		}
	}

	log := &models.AuditLog{
		ActorID:    entry.ActorID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Details:    detailsJSON,
	}
	if entry.IPAddress != "" {
		log.IPAddress = &entry.IPAddress
	}
	if entry.UserAgent != "" {
		log.UserAgent = &entry.UserAgent
	}

	if err := s.store.Insert(log); err != nil {
		s.logger.WithFields(logrus.Fields{
			"action":      entry.Action,
			"entity_type": entry.EntityType,
		}).WithError(err).Error("failed to record audit entry")
	}
}

// Recent returns the latest audit entries, newest first
func (s *AuditService) Recent(limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	entries, err := s.store.ListRecent(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load audit entries: %w", err)
	}
	return entries, nil
}
