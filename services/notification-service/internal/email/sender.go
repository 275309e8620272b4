package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Sender delivers a composed email. Delivery mechanics stay behind
// this interface; the worker only composes.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// SMTPSender delivers over a plain SMTP relay (mailhog in local
// compose, a real relay in production).
type SMTPSender struct {
	Addr string
	From string
}

func (s *SMTPSender) Send(_ context.Context, to, subject, text, html string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	if html != "" {
		msg.WriteString(html)
	} else {
		msg.WriteString(text)
	}

	return smtp.SendMail(s.Addr, nil, s.From, []string{to}, []byte(msg.String()))
}
