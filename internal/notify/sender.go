// Package notify delivers transactional email to listing subscribers and applicants.
package notify

import (
	"context"
	"errors"
	"log"

	"github.com/yukikurage/listing-api/internal/config"
)

// ErrDeliveryFailed marks a single failed send. It is never fatal to the
// workflow that triggered the notification.
var ErrDeliveryFailed = errors.New("notification delivery failed")

// Message is one rendered email.
type Message struct {
	To       string
	Subject  string
	HTML     string
	Template string
}

// Sender is the delivery channel.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender picks Resend when an API key is configured, then SMTP, and
// otherwise logs messages without sending them.
func NewSender(cfg *config.Config) Sender {
	switch {
	case cfg.ResendAPIKey != "":
		return NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom, cfg.EmailRatePerSecond)
	case cfg.SMTPHost != "":
		return &SMTPSender{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.EmailFrom,
		}
	default:
		log.Println("WARN: no email provider configured, notifications will only be logged")
		return LogSender{}
	}
}

// LogSender writes messages to the log instead of sending them.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	log.Printf("email (not sent) to=%s subject=%q template=%s", msg.To, msg.Subject, msg.Template)
	return nil
}
