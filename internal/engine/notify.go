package engine

import (
	"regexp"
	"strings"

	"github.com/crewpoint/staff-events-backend/internal/models"
)

// Channel identifies an outbound notification channel
type Channel string

const (
	// ChannelPrimary is the staff member's email address
	ChannelPrimary Channel = "primary"
	// ChannelChat is the chat-bot integration
	ChannelChat Channel = "chat"
)

var numericChatID = regexp.MustCompile(`^[0-9]+$`)

// IsNotifiable decides whether a notification should be attempted for the
// staff member on the given channel. Pure decision, no I/O; the caller is
// responsible for the dispatch and must not treat false as an error.
func IsNotifiable(staff models.StaffMember, channel Channel, chatEnabled bool) bool {
	switch channel {
	case ChannelPrimary:
		return staff.Status == models.StaffStatusActive && strings.Contains(staff.Email, "@")
	case ChannelChat:
		if !chatEnabled || staff.Status != models.StaffStatusActive {
			return false
		}
		return staff.ChatID != nil && numericChatID.MatchString(*staff.ChatID)
	default:
		return false
	}
}
