package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/dtroode/campusmarket-server/internal/model"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTP sends plain-text messages through an SMTP relay.
type SMTP struct {
	addr     string
	auth     smtp.Auth
	from     string
	sendMail sendMailFunc
}

var _ model.Mailer = (*SMTP)(nil)

func NewSMTP(host string, port int, user, password, from string) *SMTP {
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, password, host)
	}
	return &SMTP{
		addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		auth:     auth,
		from:     from,
		sendMail: smtp.SendMail,
	}
}

func (m *SMTP) Send(ctx context.Context, msg model.MailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(msg.To, "\r\n") || strings.ContainsAny(msg.Subject, "\r\n") {
		return fmt.Errorf("invalid header value")
	}

	if err := m.sendMail(m.addr, m.auth, m.from, []string{msg.To}, m.compose(msg)); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

func (m *SMTP) compose(msg model.MailMessage) []byte {
	var b strings.Builder
	b.WriteString("From: " + m.from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	b.WriteString("\r\n")
	return []byte(b.String())
}
