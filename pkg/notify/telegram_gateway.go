package notify

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramGateway sends notifications through the Telegram Bot API
type TelegramGateway struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramGateway creates a bot client from the given token
func NewTelegramGateway(token string) (*TelegramGateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telegram bot: %w", err)
	}
	return &TelegramGateway{bot: bot}, nil
}

// Send renders the template and delivers it to the given chat.
// The recipient must be a numeric chat identifier.
func (g *TelegramGateway) Send(recipient string, kind TemplateKind, payload map[string]interface{}) error {
	chatID, err := strconv.ParseInt(recipient, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat identifier %q: %w", recipient, err)
	}

	rendered, err := Render(kind, payload)
	if err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, rendered.Subject+"\n\n"+rendered.Body)
	if _, err := g.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	return nil
}

// Name returns the name of this gateway
func (g *TelegramGateway) Name() string {
	return "Telegram Bot Gateway"
}
