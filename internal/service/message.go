package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dtroode/campusmarket-server/internal/apierror"
	"github.com/dtroode/campusmarket-server/internal/logger"
	"github.com/dtroode/campusmarket-server/internal/model"
)

// Message handles direct messages between members of the same university.
type Message struct {
	store  model.MessageStore
	users  model.UserStore
	logger *logger.Logger
}

func NewMessage(store model.MessageStore, users model.UserStore, logger *logger.Logger) *Message {
	return &Message{store: store, users: users, logger: logger}
}

// Send stores a message from the caller to recipient. The recipient must be
// a member of the caller's university.
func (s *Message) Send(ctx context.Context, caller model.SessionClaims, recipient, text string) (model.Message, error) {
	recipient = model.NormalizeEmail(recipient)
	text = sanitizeText(text)
	if text == "" {
		return model.Message{}, apierror.NewErrValidation("text is required")
	}
	if utf8.RuneCountInString(text) > model.MaxMessageLength {
		return model.Message{}, apierror.NewErrValidation(fmt.Sprintf("Message cannot exceed %d characters", model.MaxMessageLength))
	}
	if recipient == caller.Email {
		return model.Message{}, apierror.NewErrValidation("Cannot send a message to yourself")
	}

	user, err := s.users.GetByEmail(ctx, recipient)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Message{}, apierror.NewErrUserNotFound()
		}
		s.logger.Error("Message service: failed to get recipient", "recipient", recipient, "error", err.Error())
		return model.Message{}, apierror.NewErrInternalServerError(err)
	}
	if user.University != caller.University {
		return model.Message{}, apierror.NewErrUserNotFound()
	}

	msg, err := s.store.Create(ctx, model.Message{
		ID:             uuid.New(),
		SenderEmail:    caller.Email,
		RecipientEmail: recipient,
		Text:           text,
		SentAt:         time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("Message service: failed to store message",
			"sender", caller.Email,
			"recipient", recipient,
			"error", err.Error())
		return model.Message{}, apierror.NewErrInternalServerError(err)
	}

	s.logger.Debug("Message service: message sent", "message_id", msg.ID, "sender", caller.Email)
	return msg, nil
}

// Conversation returns the messages between the caller and other, oldest first.
func (s *Message) Conversation(ctx context.Context, caller model.SessionClaims, other string) ([]model.Message, error) {
	other = model.NormalizeEmail(other)
	messages, err := s.store.Conversation(ctx, caller.Email, other)
	if err != nil {
		s.logger.Error("Message service: failed to load conversation",
			"email", caller.Email,
			"other", other,
			"error", err.Error())
		return nil, apierror.NewErrInternalServerError(err)
	}
	return messages, nil
}

// Threads lists the caller's conversations by their latest message, newest first.
func (s *Message) Threads(ctx context.Context, caller model.SessionClaims) ([]model.Thread, error) {
	latest, err := s.store.LatestPerCounterpart(ctx, caller.Email)
	if err != nil {
		s.logger.Error("Message service: failed to load threads", "email", caller.Email, "error", err.Error())
		return nil, apierror.NewErrInternalServerError(err)
	}

	threads := make([]model.Thread, 0, len(latest))
	for _, m := range latest {
		other := m.Counterpart(caller.Email)
		threads = append(threads, model.Thread{
			OtherEmail:  other,
			Name:        s.displayName(ctx, other),
			LastMessage: m.Text,
			LastAt:      m.SentAt,
		})
	}
	return threads, nil
}

// displayName falls back to the email when the user can no longer be loaded.
func (s *Message) displayName(ctx context.Context, email string) string {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			s.logger.Warn("Message service: failed to load thread user", "email", email, "error", err.Error())
		}
		return email
	}
	return user.FirstName + " " + user.LastName
}
