// Package email renders and delivers transactional mail.
package email

import (
	"context"
	"fmt"

	"printsite_backend/platform/config"
)

// Message is one rendered email ready for a transport.
type Message struct {
	To      string
	ToName  string
	ReplyTo string
	Subject string
	HTML    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NoopSender drops every message. Used when email is disabled.
type NoopSender struct{}

// Send implements Sender.
func (NoopSender) Send(context.Context, Message) error {
	return nil
}

// NewSender picks the transport configured for this environment.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}

	switch cfg.GetEmailTransport() {
	case config.EmailTransportSMTP:
		return NewSMTPSender(
			cfg.GetSMTPHost(),
			cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(),
			cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(),
			cfg.GetEmailFromName(),
		), nil
	case config.EmailTransportBrevo:
		return NewBrevoSender(cfg.GetBrevoAPIKey(), cfg.GetEmailFromAddress(), cfg.GetEmailFromName()), nil
	default:
		return nil, fmt.Errorf("unknown email transport %q", cfg.GetEmailTransport())
	}
}
