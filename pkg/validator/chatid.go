package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrEmptyChatID indicates the chat identifier is empty
	ErrEmptyChatID = errors.New("chat identifier cannot be empty")

	// ErrInvalidChatID indicates the chat identifier contains non-digit characters
	ErrInvalidChatID = errors.New("chat identifier must contain digits only")

	// ErrChatIDTooLong indicates the chat identifier exceeds the supported length
	ErrChatIDTooLong = errors.New("chat identifier exceeds 20 digits")
)

// chatIDRegex matches digits only
var chatIDRegex = regexp.MustCompile(`^\d+$`)

// ChatIDValidator handles chat identifier validation for bot notifications
type ChatIDValidator struct{}

// NewChatIDValidator creates a new chat identifier validator instance
func NewChatIDValidator() *ChatIDValidator {
	return &ChatIDValidator{}
}

// Validate validates a bot chat identifier.
// Returns the sanitized identifier (digits only) and an error if invalid.
func (v *ChatIDValidator) Validate(chatID string) (string, error) {
	if chatID == "" {
		return "", ErrEmptyChatID
	}

	sanitized := v.Sanitize(chatID)

	if sanitized == "" || !chatIDRegex.MatchString(sanitized) {
		return "", ErrInvalidChatID
	}

	if len(sanitized) > 20 {
		return "", ErrChatIDTooLong
	}

	return sanitized, nil
}

// Sanitize strips surrounding whitespace and common copy-paste artifacts
func (v *ChatIDValidator) Sanitize(chatID string) string {
	chatID = strings.TrimSpace(chatID)
	chatID = strings.TrimPrefix(chatID, "#")
	return chatID
}

// IsValid is a convenience method that returns true if the identifier is valid
func (v *ChatIDValidator) IsValid(chatID string) bool {
	_, err := v.Validate(chatID)
	return err == nil
}

// MustValidate validates and panics if invalid (use for testing only)
func (v *ChatIDValidator) MustValidate(chatID string) string {
	sanitized, err := v.Validate(chatID)
	if err != nil {
		panic(fmt.Sprintf("invalid chat identifier %s: %v", chatID, err))
	}
	return sanitized
}
