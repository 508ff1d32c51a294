package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dtroode/campusmarket-server/internal/model"
)

var _ model.CodeStore = (*CodeRepository)(nil)

var codeTables = map[model.CodeKind]string{
	model.CodeKindVerification:  "verification_codes",
	model.CodeKindPasswordReset: "password_reset_codes",
}

// CodeRepository stores one kind of one-time codes, one row per email.
type CodeRepository struct {
	db    *Connection
	table string
}

func NewCodeRepository(db *Connection, kind model.CodeKind) (*CodeRepository, error) {
	table, ok := codeTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown code kind %q", kind)
	}
	return &CodeRepository{db: db, table: table}, nil
}

func scanCode(row pgx.Row) (model.OneTimeCode, error) {
	var code model.OneTimeCode
	err := row.Scan(&code.Subject, &code.Value, &code.ExpiresAt, &code.LastSentAt)
	return code, err
}

// Replace upserts the code. The conflict branch only fires when the stored
// code was sent at or before throttleCutoff, so a throttled call returns no row.
func (r *CodeRepository) Replace(ctx context.Context, code model.OneTimeCode, throttleCutoff time.Time) (model.OneTimeCode, bool, error) {
	query := fmt.Sprintf(`INSERT INTO %[1]s (email, code, expires_at, last_sent_at)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (email) DO UPDATE
			  SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at, last_sent_at = EXCLUDED.last_sent_at
			  WHERE %[1]s.last_sent_at <= $5
			  RETURNING email, code, expires_at, last_sent_at`, r.table)

	// The row may vanish between a throttled upsert and the read; one retry covers it.
	for attempt := 0; attempt < 2; attempt++ {
		saved, err := scanCode(r.db.QueryRow(ctx, query, code.Subject, code.Value, code.ExpiresAt, code.LastSentAt, throttleCutoff))
		if err == nil {
			return saved, true, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return model.OneTimeCode{}, false, fmt.Errorf("failed to replace code: %w", err)
		}

		current, err := r.GetBySubject(ctx, code.Subject)
		if errors.Is(err, model.ErrNotFound) {
			continue
		}
		if err != nil {
			return model.OneTimeCode{}, false, err
		}
		return current, false, nil
	}

	return model.OneTimeCode{}, false, fmt.Errorf("failed to replace code: concurrent modification")
}

func (r *CodeRepository) GetBySubject(ctx context.Context, subject string) (model.OneTimeCode, error) {
	query := fmt.Sprintf(`SELECT email, code, expires_at, last_sent_at FROM %s WHERE email = $1`, r.table)
	return r.get(ctx, query, subject)
}

func (r *CodeRepository) GetByValue(ctx context.Context, value string) (model.OneTimeCode, error) {
	query := fmt.Sprintf(`SELECT email, code, expires_at, last_sent_at FROM %s WHERE code = $1`, r.table)
	return r.get(ctx, query, value)
}

func (r *CodeRepository) get(ctx context.Context, query string, arg string) (model.OneTimeCode, error) {
	code, err := scanCode(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.OneTimeCode{}, model.ErrNotFound
		}
		return model.OneTimeCode{}, fmt.Errorf("failed to get code: %w", err)
	}
	return code, nil
}

func (r *CodeRepository) DeleteIfMatch(ctx context.Context, code model.OneTimeCode) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE email = $1 AND code = $2`, r.table)

	tag, err := r.db.Exec(ctx, query, code.Subject, code.Value)
	if err != nil {
		return false, fmt.Errorf("failed to delete code: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *CodeRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE expires_at < $1`, r.table)

	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired codes: %w", err)
	}
	return tag.RowsAffected(), nil
}
