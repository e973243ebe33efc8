package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/estatehub/backend/internal/domain/notification"
	"github.com/estatehub/backend/internal/infrastructure/config"
	"github.com/wneessen/go-mail"
)

// EmailAdapter sends notifications through an SMTP relay
type EmailAdapter struct {
	from   string
	client *mail.Client
}

// NewEmailAdapter validates the SMTP settings and prepares a client.
// No connection is opened until the first Send.
func NewEmailAdapter(cfg config.SMTPConfig) (*EmailAdapter, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.From == "" {
		return nil, errors.New("smtp from address is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	opts := []mail.Option{
		mail.WithTimeout(timeout),
	}
	if cfg.Port > 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}
	if cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return &EmailAdapter{from: cfg.From, client: client}, nil
}

// Channel returns the channel type
func (a *EmailAdapter) Channel() notification.Channel {
	return notification.ChannelEmail
}

// Accepts reports whether the recipient has an email address
func (a *EmailAdapter) Accepts(r Recipient) bool {
	return r.Email != ""
}

// Send delivers one plain-text email
func (a *EmailAdapter) Send(ctx context.Context, r Recipient, msg Message) error {
	if !a.Accepts(r) {
		return ErrNoAddress
	}
	m, err := a.buildMessage(r, msg)
	if err != nil {
		return err
	}
	if err := a.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", r.Email, err)
	}
	return nil
}

func (a *EmailAdapter) buildMessage(r Recipient, msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(a.from); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if r.Name != "" {
		if err := m.AddToFormat(r.Name, r.Email); err != nil {
			return nil, fmt.Errorf("invalid recipient address: %w", err)
		}
	} else if err := m.To(r.Email); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	return m, nil
}

var _ Sender = (*EmailAdapter)(nil)
