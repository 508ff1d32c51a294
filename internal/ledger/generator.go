package ledger

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// Generator produces a fresh code value.
type Generator func() (string, error)

// NumericCode returns a generator of zero-padded decimal codes with the given number of digits.
func NumericCode(digits int) Generator {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	format := fmt.Sprintf("%%0%dd", digits)

	return func() (string, error) {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate numeric code: %w", err)
		}
		return fmt.Sprintf(format, n), nil
	}
}

// OpaqueToken returns a generator of random UUIDv4 strings.
func OpaqueToken() Generator {
	return func() (string, error) {
		id, err := uuid.NewRandom()
		if err != nil {
			return "", fmt.Errorf("failed to generate token: %w", err)
		}
		return id.String(), nil
	}
}
