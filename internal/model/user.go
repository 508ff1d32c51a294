package model

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	Create(ctx context.Context, user User) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	MarkVerified(ctx context.Context, email string) error
	SetPasswordHash(ctx context.Context, email string, passwordHash string) error
}

// User represents a registered marketplace member.
type User struct {
	ID             uuid.UUID
	Email          string
	FirstName      string
	LastName       string
	University     string
	PasswordHash   string
	Verified       bool
	ProfilePicture *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PublicProfile is the subset of a user visible to other members.
type PublicProfile struct {
	FirstName  string
	LastName   string
	Email      string
	University string
}

// Public returns the public view of the user.
func (u User) Public() PublicProfile {
	return PublicProfile{
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		University: u.University,
	}
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailDomain returns the lowercase part after the '@'. It returns "" unless
// email has exactly one '@' with a non-empty local part and domain.
func EmailDomain(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" || strings.Contains(domain, "@") {
		return ""
	}
	return strings.ToLower(domain)
}

// SignupParams contains parameters to register a user.
type SignupParams struct {
	FirstName  string
	LastName   string
	Email      string
	Password   string
	University string
}
