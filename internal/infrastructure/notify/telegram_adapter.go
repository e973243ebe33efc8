package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/estatehub/backend/internal/domain/notification"
	"github.com/estatehub/backend/internal/infrastructure/config"
)

// TelegramAdapter sends notifications through the Telegram Bot API
type TelegramAdapter struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramAdapter authenticates the bot token with getMe
func NewTelegramAdapter(cfg config.TelegramConfig) (*TelegramAdapter, error) {
	if cfg.BotToken == "" {
		return nil, errors.New("telegram bot token is required")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, endpoint, &http.Client{Timeout: 15 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate telegram bot: %w", err)
	}
	return &TelegramAdapter{bot: bot}, nil
}

// Channel returns the channel type
func (a *TelegramAdapter) Channel() notification.Channel {
	return notification.ChannelTelegram
}

// Accepts reports whether the recipient linked a chat
func (a *TelegramAdapter) Accepts(r Recipient) bool {
	return strings.TrimSpace(r.TelegramChatID) != ""
}

// Send posts one message. Numeric chat ids address users and groups,
// "@name" addresses a public channel.
func (a *TelegramAdapter) Send(ctx context.Context, r Recipient, msg Message) error {
	if !a.Accepts(r) {
		return ErrNoAddress
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	text := msg.Subject
	if msg.Body != "" {
		text += "\n\n" + msg.Body
	}

	chat := strings.TrimSpace(r.TelegramChatID)
	var out tgbotapi.MessageConfig
	if id, err := strconv.ParseInt(chat, 10, 64); err == nil {
		out = tgbotapi.NewMessage(id, text)
	} else {
		out = tgbotapi.NewMessageToChannel(chat, text)
	}
	out.DisableWebPagePreview = true

	if _, err := a.bot.Send(out); err != nil {
		return fmt.Errorf("telegram send to %s: %w", chat, err)
	}
	return nil
}

var _ Sender = (*TelegramAdapter)(nil)
