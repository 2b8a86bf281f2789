package dinner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShareCodeLength(t *testing.T) {
	code, err := NewShareCode()
	require.NoError(t, err)
	assert.Len(t, code, ShareCodeLength)
}

func TestNewShareCodeCharset(t *testing.T) {
	code, err := NewShareCode()
	require.NoError(t, err)

	// Codes are embedded in URL paths and must never need escaping.
	for _, c := range code {
		assert.Contains(t, shareCodeAlphabet, string(c))
	}
}

func TestNewShareCodeUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code, err := NewShareCode()
		require.NoError(t, err)
		assert.False(t, seen[code], "duplicate code %s after %d draws", code, i)
		seen[code] = true
	}
}
