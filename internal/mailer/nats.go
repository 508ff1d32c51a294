package mailer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/dtroode/campusmarket-server/internal/model"
)

type publisher interface {
	Publish(subj string, data []byte) error
}

// NATS publishes messages as JSON to a subject consumed by a mail worker.
type NATS struct {
	conn    *nats.Conn
	pub     publisher
	subject string
}

var _ model.Mailer = (*NATS)(nil)

// DialNATS connects to the server at url.
func DialNATS(url, subject string) (*NATS, error) {
	conn, err := nats.Connect(url, nats.Name("campusmarket-mailer"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return &NATS{conn: conn, pub: conn, subject: subject}, nil
}

func (m *NATS) Send(ctx context.Context, msg model.MailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode mail message: %w", err)
	}
	if err := m.pub.Publish(m.subject, data); err != nil {
		return fmt.Errorf("failed to publish mail message: %w", err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (m *NATS) Close() {
	if m.conn != nil {
		_ = m.conn.Drain()
	}
}
