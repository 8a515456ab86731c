package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"
)

// SMTPSender delivers mail over plain SMTP with optional AUTH. It implements
// EmailSender.
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SendEmail assembles an RFC 5322 message and submits it. The context is
// honoured only up to the blocking smtp call; net/smtp offers no hooks inside
// the dialogue.
func (s *SMTPSender) SendEmail(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}

	if err := smtp.SendMail(addr, auth, s.From, []string{to}, []byte(b.String())); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

// LogSender is the transport used when no SMTP host is configured: it logs
// the message instead of sending it. Useful in development.
type LogSender struct {
	Logger zerolog.Logger
}

// SendEmail logs the message and reports success.
func (l *LogSender) SendEmail(_ context.Context, to, subject, _ string) error {
	l.Logger.Info().
		Str("recipient", to).
		Str("subject", subject).
		Msg("email transport disabled, message logged")
	return nil
}
