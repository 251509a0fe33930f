package notify

import "fmt"

// TemplateKind identifies a notification template
type TemplateKind string

const (
	EventCreated    TemplateKind = "event_created"
	EventCancelled  TemplateKind = "event_cancelled"
	EventReinstated TemplateKind = "event_reinstated"
	Selected        TemplateKind = "selected"
	Rejected        TemplateKind = "rejected"
	PointsAwarded   TemplateKind = "points_awarded"
	LevelUp         TemplateKind = "level_up"
)

// Dispatcher sends a rendered notification to a single recipient address.
// The recipient format depends on the gateway: an email address for the
// mail gateway, a numeric chat identifier for the bot gateway.
type Dispatcher interface {
	Send(recipient string, kind TemplateKind, payload map[string]interface{}) error
	Name() string
}

// Message is a rendered notification ready for delivery
type Message struct {
	Subject string
	Body    string
}

// Render builds the message for a template kind from its payload.
// Unknown template kinds return an error so misconfigured callers fail loudly.
func Render(kind TemplateKind, payload map[string]interface{}) (Message, error) {
	name := str(payload, "event_name")
	staff := str(payload, "staff_name")

	switch kind {
	case EventCreated:
		return Message{
			Subject: fmt.Sprintf("New event: %s", name),
			Body: fmt.Sprintf("Hi %s,\n\nA new event \"%s\" is open for sign-up on %s at %s.\nIt is worth %v points.\n\nSee you there!",
				staff, name, str(payload, "event_date"), str(payload, "start_time"), payload["points"]),
		}, nil
	case EventCancelled:
		return Message{
			Subject: fmt.Sprintf("Event cancelled: %s", name),
			Body: fmt.Sprintf("Hi %s,\n\nThe event \"%s\" scheduled for %s has been cancelled.\nYour sign-up is kept and becomes active again if the event is reinstated.",
				staff, name, str(payload, "event_date")),
		}, nil
	case EventReinstated:
		return Message{
			Subject: fmt.Sprintf("Event back on: %s", name),
			Body: fmt.Sprintf("Hi %s,\n\nGood news! The event \"%s\" on %s is back on.\nYour previous sign-up still counts.",
				staff, name, str(payload, "event_date")),
		}, nil
	case Selected:
		return Message{
			Subject: fmt.Sprintf("You're in: %s", name),
			Body: fmt.Sprintf("Hi %s,\n\nYou have been selected for \"%s\" on %s.\n%v points will be added to your balance.",
				staff, name, str(payload, "event_date"), payload["points"]),
		}, nil
	case Rejected:
		return Message{
			Subject: fmt.Sprintf("Sign-up update: %s", name),
			Body: fmt.Sprintf("Hi %s,\n\nUnfortunately you were not selected for \"%s\" this time.\nThanks for signing up, and better luck next time!",
				staff, name),
		}, nil
	case PointsAwarded:
		return Message{
			Subject: "Points awarded",
			Body: fmt.Sprintf("Hi %s,\n\n%v points have been added to your balance. New total: %v.",
				staff, payload["points"], payload["total"]),
		}, nil
	case LevelUp:
		return Message{
			Subject: fmt.Sprintf("Level up: %s", str(payload, "level")),
			Body: fmt.Sprintf("Hi %s,\n\nCongratulations! You reached level %s with %v points.",
				staff, str(payload, "level"), payload["total"]),
		}, nil
	default:
		return Message{}, fmt.Errorf("unknown notification template: %s", kind)
	}
}

func str(payload map[string]interface{}, key string) string {
	if v, ok := payload[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	}
	return ""
}
