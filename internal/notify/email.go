package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// EmailSender delivers notifications over SMTP with the body sent as HTML,
// so rendered reports arrive intact in the recipient's inbox.
type EmailSender struct {
	addr string // host:port
	from string
	to   []string
	auth smtp.Auth
}

// NewEmailSender creates an EmailSender. Username and password may be empty
// for unauthenticated relays.
func NewEmailSender(host string, port int, username, password, from string, to []string) *EmailSender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &EmailSender{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: from,
		to:   to,
		auth: auth,
	}
}

// Send delivers one message. net/smtp has no context hook, so cancellation is
// checked before dialing only.
func (e *EmailSender) Send(ctx context.Context, title, body string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("email: %w", err)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", e.from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(e.to, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", title)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(e.addr, e.auth, e.from, e.to, []byte(msg.String())); err != nil {
		return fmt.Errorf("email: send via %s: %w", e.addr, err)
	}
	return nil
}

// Name returns the sender identifier.
func (e *EmailSender) Name() string {
	return "email"
}
