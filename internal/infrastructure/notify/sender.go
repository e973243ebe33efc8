// Package notify delivers notifications over outbound channels (SMTP email, Telegram).
package notify

import (
	"context"
	"errors"

	"github.com/estatehub/backend/internal/domain/notification"
)

// ErrNoAddress is returned when the recipient has no address on the sender's channel
var ErrNoAddress = errors.New("recipient has no address for this channel")

// Recipient is where a notification goes
type Recipient struct {
	Name           string
	Email          string
	TelegramChatID string
}

// Message is the rendered content of a notification
type Message struct {
	Subject string
	Body    string
}

// Sender delivers a message over one channel
type Sender interface {
	Channel() notification.Channel
	// Accepts reports whether the recipient is reachable on this channel
	Accepts(r Recipient) bool
	Send(ctx context.Context, r Recipient, msg Message) error
}

// MessageFor renders a stored notification
func MessageFor(n *notification.Notification) Message {
	return Message{Subject: n.Title, Body: n.Body}
}
