// Package password hashes and checks user passwords.
package password

import (
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// MinLength is the minimum accepted password length.
const MinLength = 8

// ErrWeak is returned for passwords that do not satisfy the policy.
var ErrWeak = errors.New("password does not satisfy policy")

// Hasher hashes passwords with bcrypt.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher. A zero cost means bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a salted bcrypt hash of plain.
func (h *Hasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Compare reports whether plain matches hash.
func (h *Hasher) Compare(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// Validate checks that plain has at least MinLength characters, a letter and a digit.
func Validate(plain string) error {
	var letter, digit bool
	n := 0
	for _, r := range plain {
		n++
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if n < MinLength || !letter || !digit {
		return ErrWeak
	}
	return nil
}
