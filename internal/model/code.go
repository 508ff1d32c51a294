package model

import (
	"context"
	"time"
)

// CodeKind distinguishes the two one-time code ledgers.
type CodeKind string

const (
	// CodeKindVerification is the signup email verification code.
	CodeKindVerification CodeKind = "verification"
	// CodeKindPasswordReset is the password reset token.
	CodeKindPasswordReset CodeKind = "password_reset"
)

const (
	// VerificationCodeTTL is how long a verification code stays valid.
	VerificationCodeTTL = 10 * time.Minute
	// PasswordResetCodeTTL is how long a reset token stays valid.
	PasswordResetCodeTTL = 15 * time.Minute
	// CodeResendThrottle is the minimum interval between two issuances for one subject.
	CodeResendThrottle = 60 * time.Second
)

// OneTimeCode is a single-use, time-limited secret bound to an email.
type OneTimeCode struct {
	Subject    string
	Value      string
	ExpiresAt  time.Time
	LastSentAt time.Time
}

// Expired reports whether the code is past its expiry at now.
func (c OneTimeCode) Expired(now time.Time) bool {
	return c.ExpiresAt.Before(now)
}

// CodeStore persists one-time codes of a single kind.
//
// Replace and DeleteIfMatch must be atomic in the backing store: several
// server instances may issue or consume codes for the same subject at once.
type CodeStore interface {
	// Replace makes code the only live code for its subject, unless the
	// current one was sent after throttleCutoff. In that case nothing changes
	// and the current code is returned with replaced=false.
	Replace(ctx context.Context, code OneTimeCode, throttleCutoff time.Time) (current OneTimeCode, replaced bool, err error)
	GetBySubject(ctx context.Context, subject string) (OneTimeCode, error)
	GetByValue(ctx context.Context, value string) (OneTimeCode, error)
	// DeleteIfMatch removes the code only if subject and value still match.
	DeleteIfMatch(ctx context.Context, code OneTimeCode) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
