package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/campusmarket-server/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the session token lifetime.
const DefaultTTL = 24 * time.Hour

// MinKeyBytes is the minimum HMAC key length.
const MinKeyBytes = 32

// Claims represents session token claims.
type Claims struct {
	jwt.RegisteredClaims
	University string `json:"university"`
}

// JWT implements TokenManager backed by HMAC-SHA256.
type JWT struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

var _ model.TokenManager = (*JWT)(nil)

// Option configures JWT.
type Option func(*JWT)

// WithTTL overrides the token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(j *JWT) {
		if ttl > 0 {
			j.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(j *JWT) {
		j.now = now
	}
}

// NewJWT creates a token manager with the provided signing key.
func NewJWT(key []byte, opts ...Option) (*JWT, error) {
	if len(key) < MinKeyBytes {
		return nil, fmt.Errorf("signing key must be at least %d bytes", MinKeyBytes)
	}

	j := &JWT{
		key: append([]byte(nil), key...),
		ttl: DefaultTTL,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}

	return j, nil
}

// Issue creates a signed session token for email scoped to university.
func (j *JWT) Issue(email, university string) (string, error) {
	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		University: university,
	})

	tokenString, err := token.SignedString(j.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// Validate checks signature and expiry and returns the token claims.
// Every failure is reported as model.ErrInvalidToken.
func (j *JWT) Validate(tokenString string) (model.SessionClaims, error) {
	if tokenString == "" {
		return model.SessionClaims{}, model.ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return j.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return model.SessionClaims{}, errors.Join(model.ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" || claims.IssuedAt == nil {
		return model.SessionClaims{}, model.ErrInvalidToken
	}

	return model.SessionClaims{
		Email:      claims.Subject,
		University: claims.University,
		IssuedAt:   claims.IssuedAt.Time,
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}
