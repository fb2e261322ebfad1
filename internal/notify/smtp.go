package notify

import (
	"context"
	"fmt"
	"net/smtp"
)

// SMTPSender relays messages through a plain SMTP server.
type SMTPSender struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	addr := s.Host + ":" + s.Port

	body := "From: " + s.From + "\r\n" +
		"To: " + msg.To + "\r\n" +
		"Subject: " + msg.Subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		msg.HTML

	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}

	if err := smtp.SendMail(addr, auth, s.From, []string{msg.To}, []byte(body)); err != nil {
		return fmt.Errorf("%w: smtp send: %v", ErrDeliveryFailed, err)
	}

	return nil
}
