package services

import (
	"github.com/sirupsen/logrus"

	"github.com/crewpoint/staff-events-backend/internal/engine"
	"github.com/crewpoint/staff-events-backend/internal/models"
	"github.com/crewpoint/staff-events-backend/pkg/notify"
)

// NotificationService resolves which staff get which notification and fans
// deliveries out across the configured channels. Delivery failures are
// logged and never bubble up into the triggering operation.
type NotificationService struct {
	staff       StaffStore
	events      EventStore
	levels      LevelStore
	primary     notify.Dispatcher
	chat        notify.Dispatcher
	chatEnabled bool
	logger      *logrus.Logger
}

// NewNotificationService creates a new NotificationService.
// chat may be nil when no bot channel is configured.
func NewNotificationService(
	staff StaffStore,
	events EventStore,
	levels LevelStore,
	primary notify.Dispatcher,
	chat notify.Dispatcher,
	chatEnabled bool,
	logger *logrus.Logger,
) *NotificationService {
	return &NotificationService{
		staff:       staff,
		events:      events,
		levels:      levels,
		primary:     primary,
		chat:        chat,
		chatEnabled: chatEnabled && chat != nil,
		logger:      logger,
	}
}

// EventOpened announces a newly opened event to every active staff member
// whose level clears the event's required tier.
func (s *NotificationService) EventOpened(event models.Event) {
	staff, err := s.staff.ListActive()
	if err != nil {
		s.logger.WithError(err).Error("failed to load staff for event announcement")
		return
	}

	levels, err := s.levels.List()
	if err != nil {
		s.logger.WithError(err).Error("failed to load ladder for event announcement")
		return
	}
	ladder := engine.NewLadder(levels)

	required, ok := ladder.LevelByID(event.RequiredLevelID)
	if !ok {
		s.logger.WithField("event_id", event.ID).Error("event references an unknown level")
		return
	}

	eligible := make([]models.StaffMember, 0, len(staff))
	for _, member := range staff {
		level, ok := ladder.LevelByName(member.LevelName)
		if ok && engine.IsEligible(level, required) {
			eligible = append(eligible, member)
		}
	}

	s.broadcast(eligible, notify.EventCreated, eventPayload(event))
}

// EventCancelled notifies everyone signed up on the cancelled event
func (s *NotificationService) EventCancelled(event models.Event) {
	s.notifySignups(event, notify.EventCancelled)
}

// EventReinstated notifies everyone whose signup became active again
func (s *NotificationService) EventReinstated(event models.Event) {
	s.notifySignups(event, notify.EventReinstated)
}

// SelectionResult notifies selected and rejected staff after an event closes
func (s *NotificationService) SelectionResult(event models.Event, selected, rejected []models.StaffMember) {
	payload := eventPayload(event)
	s.broadcast(selected, notify.Selected, payload)
	s.broadcast(rejected, notify.Rejected, payload)
}

// PointsAwarded notifies one staff member about a balance change
func (s *NotificationService) PointsAwarded(staff models.StaffMember, delta, total int) {
	s.deliver(staff, notify.PointsAwarded, map[string]interface{}{
		"staff_name": staff.Name,
		"points":     delta,
		"total":      total,
	})
}

// LevelUp congratulates one staff member on reaching a higher tier
func (s *NotificationService) LevelUp(staff models.StaffMember, levelName string, total int) {
	s.deliver(staff, notify.LevelUp, map[string]interface{}{
		"staff_name": staff.Name,
		"level":      levelName,
		"total":      total,
	})
}

func (s *NotificationService) notifySignups(event models.Event, kind notify.TemplateKind) {
	signups, err := s.events.ListSignups(event.ID)
	if err != nil {
		s.logger.WithError(err).Error("failed to load signups for notification")
		return
	}
	if len(signups) == 0 {
		return
	}

	ids := make([]string, 0, len(signups))
	for _, signup := range signups {
		ids = append(ids, signup.StaffID)
	}

	staff, err := s.staff.GetByIDs(ids)
	if err != nil {
		s.logger.WithError(err).Error("failed to load staff for notification")
		return
	}

	s.broadcast(staff, kind, eventPayload(event))
}

func (s *NotificationService) broadcast(staff []models.StaffMember, kind notify.TemplateKind, payload map[string]interface{}) {
	for _, member := range staff {
		s.deliver(member, kind, payload)
	}
}

func (s *NotificationService) deliver(member models.StaffMember, kind notify.TemplateKind, payload map[string]interface{}) {
	personal := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		personal[k] = v
	}
	personal["staff_name"] = member.Name

	if engine.IsNotifiable(member, engine.ChannelPrimary, s.chatEnabled) {
		if err := s.primary.Send(member.Email, kind, personal); err != nil {
			s.logger.WithFields(logrus.Fields{
				"staff_id": member.ID,
				"gateway":  s.primary.Name(),
				"template": string(kind),
			}).WithError(err).Warn("notification delivery failed")
		}
	}

	if s.chatEnabled && engine.IsNotifiable(member, engine.ChannelChat, s.chatEnabled) {
		if err := s.chat.Send(*member.ChatID, kind, personal); err != nil {
			s.logger.WithFields(logrus.Fields{
				"staff_id": member.ID,
				"gateway":  s.chat.Name(),
				"template": string(kind),
			}).WithError(err).Warn("notification delivery failed")
		}
	}
}

func eventPayload(event models.Event) map[string]interface{} {
	return map[string]interface{}{
		"event_name": event.Name,
		"event_date": event.EventDate.Format("2006-01-02"),
		"start_time": event.StartTime,
		"points":     event.Points,
	}
}
