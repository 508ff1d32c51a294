package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	ErrCodeNotFound = errors.New("code not found")
	ErrCodeInvalid  = errors.New("code invalid")
	ErrCodeExpired  = errors.New("code expired")

	ErrInvalidToken = errors.New("invalid token")
)

// RateLimitedError is returned when a code is requested inside the resend window.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry in %s", e.RetryAfter)
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds, never below one.
func (e *RateLimitedError) RetryAfterSeconds() int {
	secs := int((e.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
