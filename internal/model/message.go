package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MaxMessageLength limits the text of a single message, in runes.
const MaxMessageLength = 2000

// MessageStore defines persistence operations for direct messages.
type MessageStore interface {
	Create(ctx context.Context, msg Message) (Message, error)
	// Conversation returns every message exchanged between a and b, oldest first.
	Conversation(ctx context.Context, a, b string) ([]Message, error)
	// LatestPerCounterpart returns the newest message of each conversation
	// email takes part in, newest first.
	LatestPerCounterpart(ctx context.Context, email string) ([]Message, error)
}

// Message is a direct message between two members.
type Message struct {
	ID             uuid.UUID
	SenderEmail    string
	RecipientEmail string
	Text           string
	SentAt         time.Time
}

// Counterpart returns the other participant of the message as seen by email.
func (m Message) Counterpart(email string) string {
	if m.SenderEmail == email {
		return m.RecipientEmail
	}
	return m.SenderEmail
}

// Thread summarizes a conversation by its latest message.
type Thread struct {
	OtherEmail  string
	Name        string
	LastMessage string
	LastAt      time.Time
}
