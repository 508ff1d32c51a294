package model

import "time"

// SessionClaims is the identity and authorization scope carried by a session token.
type SessionClaims struct {
	Email      string
	University string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// TokenManager mints and validates session tokens.
type TokenManager interface {
	Issue(email, university string) (string, error)
	Validate(token string) (SessionClaims, error)
}
