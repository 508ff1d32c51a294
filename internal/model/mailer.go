package model

import "context"

// MailMessage is a plain-text email.
type MailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Mailer dispatches outbound email.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}
