// Package mailer delivers outbound email through a configurable backend.
package mailer

import (
	"fmt"

	"github.com/dtroode/campusmarket-server/internal/config"
	"github.com/dtroode/campusmarket-server/internal/logger"
	"github.com/dtroode/campusmarket-server/internal/model"
)

const (
	BackendLog  = "log"
	BackendSMTP = "smtp"
	BackendNATS = "nats"
)

// New builds the mailer selected by cfg.Mail.Backend. The returned close
// function releases backend resources.
func New(cfg *config.Config, log *logger.Logger) (model.Mailer, func(), error) {
	switch cfg.Mail.Backend {
	case "", BackendLog:
		return NewLog(log), func() {}, nil
	case BackendSMTP:
		return NewSMTP(cfg.Mail.SMTPHost, cfg.Mail.SMTPPort, cfg.Mail.SMTPUser, cfg.Mail.SMTPPassword, cfg.Mail.From), func() {}, nil
	case BackendNATS:
		m, err := DialNATS(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			return nil, nil, err
		}
		return m, m.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown mail backend %q", cfg.Mail.Backend)
	}
}
