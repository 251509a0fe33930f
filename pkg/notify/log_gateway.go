package notify

import (
	"github.com/sirupsen/logrus"
)

// LogGateway writes notifications to the log instead of delivering them.
// Used in development so the full flow can run without external credentials.
type LogGateway struct {
	logger *logrus.Logger
}

// NewLogGateway creates a log-only gateway
func NewLogGateway(logger *logrus.Logger) *LogGateway {
	return &LogGateway{logger: logger}
}

// Send renders the template and logs it
func (g *LogGateway) Send(recipient string, kind TemplateKind, payload map[string]interface{}) error {
	msg, err := Render(kind, payload)
	if err != nil {
		return err
	}

	g.logger.WithFields(logrus.Fields{
		"recipient": recipient,
		"template":  string(kind),
		"subject":   msg.Subject,
	}).Info("notification (log mode)")

	return nil
}

// Name returns the name of this gateway
func (g *LogGateway) Name() string {
	return "Log Gateway"
}
