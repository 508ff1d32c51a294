// Package ledger issues and consumes one-time codes bound to an email.
package ledger

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/campusmarket-server/internal/logger"
	"github.com/dtroode/campusmarket-server/internal/model"
)

// Policy describes one kind of code.
type Policy struct {
	Kind     model.CodeKind
	TTL      time.Duration
	Throttle time.Duration
	Generate Generator
}

// VerificationPolicy is the policy of signup verification codes.
func VerificationPolicy() Policy {
	return Policy{
		Kind:     model.CodeKindVerification,
		TTL:      model.VerificationCodeTTL,
		Throttle: model.CodeResendThrottle,
		Generate: NumericCode(6),
	}
}

// PasswordResetPolicy is the policy of password reset tokens.
func PasswordResetPolicy() Policy {
	return Policy{
		Kind:     model.CodeKindPasswordReset,
		TTL:      model.PasswordResetCodeTTL,
		Throttle: model.CodeResendThrottle,
		Generate: OpaqueToken(),
	}
}

// Ledger manages codes of a single kind.
type Ledger struct {
	store  model.CodeStore
	policy Policy
	logger *logger.Logger
	now    func() time.Time
}

// New creates a Ledger over store.
func New(store model.CodeStore, policy Policy, logger *logger.Logger) *Ledger {
	return &Ledger{
		store:  store,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
}

// Kind returns the kind of codes this ledger manages.
func (l *Ledger) Kind() model.CodeKind {
	return l.policy.Kind
}

// Issue creates a new code for subject, replacing the previous one.
// A request inside the throttle window leaves the current code untouched and
// returns *model.RateLimitedError.
func (l *Ledger) Issue(ctx context.Context, subject string) (model.OneTimeCode, error) {
	value, err := l.policy.Generate()
	if err != nil {
		return model.OneTimeCode{}, err
	}

	now := l.now()
	code := model.OneTimeCode{
		Subject:    subject,
		Value:      value,
		ExpiresAt:  now.Add(l.policy.TTL),
		LastSentAt: now,
	}

	current, replaced, err := l.store.Replace(ctx, code, now.Add(-l.policy.Throttle))
	if err != nil {
		return model.OneTimeCode{}, fmt.Errorf("failed to store %s code: %w", l.policy.Kind, err)
	}
	if !replaced {
		retryAfter := current.LastSentAt.Add(l.policy.Throttle).Sub(now)
		l.logger.Debug("Ledger: issuance throttled", "kind", l.policy.Kind, "email", subject, "retry_after", retryAfter)
		return model.OneTimeCode{}, &model.RateLimitedError{RetryAfter: retryAfter}
	}

	l.logger.Debug("Ledger: code issued", "kind", l.policy.Kind, "email", subject, "expires_at", code.ExpiresAt)
	return code, nil
}

// ConsumeForSubject checks supplied against the live code of subject and
// deletes it on success. A mismatch keeps the code; an expired code is deleted.
func (l *Ledger) ConsumeForSubject(ctx context.Context, subject, supplied string) (model.OneTimeCode, error) {
	code, err := l.store.GetBySubject(ctx, subject)
	if err != nil {
		return model.OneTimeCode{}, l.lookupErr(err)
	}
	if subtle.ConstantTimeCompare([]byte(code.Value), []byte(supplied)) != 1 {
		return model.OneTimeCode{}, model.ErrCodeInvalid
	}
	return l.consume(ctx, code)
}

// ConsumeByValue finds the code by its value and deletes it on success.
// It returns the code so the caller learns its subject.
func (l *Ledger) ConsumeByValue(ctx context.Context, value string) (model.OneTimeCode, error) {
	if value == "" {
		return model.OneTimeCode{}, model.ErrCodeNotFound
	}
	code, err := l.store.GetByValue(ctx, value)
	if err != nil {
		return model.OneTimeCode{}, l.lookupErr(err)
	}
	return l.consume(ctx, code)
}

func (l *Ledger) consume(ctx context.Context, code model.OneTimeCode) (model.OneTimeCode, error) {
	expired := code.Expired(l.now())

	deleted, err := l.store.DeleteIfMatch(ctx, code)
	if err != nil {
		return model.OneTimeCode{}, fmt.Errorf("failed to delete %s code: %w", l.policy.Kind, err)
	}
	if expired {
		return model.OneTimeCode{}, model.ErrCodeExpired
	}
	// Someone else consumed or replaced it between the lookup and the delete.
	if !deleted {
		return model.OneTimeCode{}, model.ErrCodeNotFound
	}

	return code, nil
}

func (l *Ledger) lookupErr(err error) error {
	if errors.Is(err, model.ErrNotFound) {
		return model.ErrCodeNotFound
	}
	return fmt.Errorf("failed to get %s code: %w", l.policy.Kind, err)
}

// Sweep deletes every expired code and returns how many were removed.
func (l *Ledger) Sweep(ctx context.Context) (int64, error) {
	n, err := l.store.DeleteExpired(ctx, l.now())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep %s codes: %w", l.policy.Kind, err)
	}
	return n, nil
}
