package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dtroode/campusmarket-server/internal/model"
)

var _ model.MessageStore = (*MessageRepository)(nil)

const messageColumns = `id, sender_email, recipient_email, text, sent_at`

type MessageRepository struct {
	db *Connection
}

func NewMessageRepository(db *Connection) *MessageRepository {
	return &MessageRepository{db: db}
}

func scanMessage(row pgx.Row) (model.Message, error) {
	var m model.Message
	err := row.Scan(&m.ID, &m.SenderEmail, &m.RecipientEmail, &m.Text, &m.SentAt)
	return m, err
}

func (r *MessageRepository) Create(ctx context.Context, msg model.Message) (model.Message, error) {
	query := `INSERT INTO messages (id, sender_email, recipient_email, text, sent_at)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING ` + messageColumns

	saved, err := scanMessage(r.db.QueryRow(ctx, query,
		msg.ID, msg.SenderEmail, msg.RecipientEmail, msg.Text, msg.SentAt,
	))
	if err != nil {
		return model.Message{}, fmt.Errorf("failed to create message: %w", err)
	}

	return saved, nil
}

func (r *MessageRepository) Conversation(ctx context.Context, a, b string) ([]model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
			  WHERE (sender_email = $1 AND recipient_email = $2)
			     OR (sender_email = $2 AND recipient_email = $1)
			  ORDER BY sent_at, id`

	return r.list(ctx, query, a, b)
}

func (r *MessageRepository) LatestPerCounterpart(ctx context.Context, email string) ([]model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM (
				SELECT DISTINCT ON (counterpart) ` + messageColumns + `
				FROM (
					SELECT ` + messageColumns + `,
						   CASE WHEN sender_email = $1 THEN recipient_email ELSE sender_email END AS counterpart
					FROM messages
					WHERE sender_email = $1 OR recipient_email = $1
				) m
				ORDER BY counterpart, sent_at DESC, id DESC
			  ) latest
			  ORDER BY sent_at DESC`

	return r.list(ctx, query, email)
}

func (r *MessageRepository) list(ctx context.Context, query string, args ...any) ([]model.Message, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]model.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	return messages, nil
}
