package mailer

import (
	"context"

	"github.com/dtroode/campusmarket-server/internal/logger"
	"github.com/dtroode/campusmarket-server/internal/model"
)

// Log writes messages to the application log instead of sending them.
// Meant for local development.
type Log struct {
	logger *logger.Logger
}

var _ model.Mailer = (*Log)(nil)

func NewLog(logger *logger.Logger) *Log {
	return &Log{logger: logger}
}

func (m *Log) Send(_ context.Context, msg model.MailMessage) error {
	m.logger.Info("Mailer: message not sent, log backend", "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return nil
}
