package ledger

import (
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericCode(t *testing.T) {
	gen := NumericCode(6)
	re := regexp.MustCompile(`^[0-9]{6}$`)

	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code, err := gen()
		require.NoError(t, err)
		assert.Regexp(t, re, code)
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 150)
}

func TestOpaqueToken(t *testing.T) {
	gen := OpaqueToken()

	a, err := gen()
	require.NoError(t, err)
	b, err := gen()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	id, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), id.Version())
}
