package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStoreRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")

	s, err := NewSessionStore(path)
	require.NoError(t, err)

	_, ok := s.Get("abc12345")
	assert.False(t, ok)

	require.NoError(t, s.Set("abc12345", "token-1"))
	token, ok := s.Get("abc12345")
	require.True(t, ok)
	assert.Equal(t, "token-1", token)

	// A fresh store reads the same file back.
	reloaded, err := NewSessionStore(path)
	require.NoError(t, err)
	token, ok = reloaded.Get("abc12345")
	require.True(t, ok)
	assert.Equal(t, "token-1", token)
}

func TestSessionStoreOneTokenPerDinner(t *testing.T) {
	s, err := NewSessionStore(filepath.Join(t.TempDir(), "sessions.json"))
	require.NoError(t, err)

	require.NoError(t, s.Set("dinner-a", "token-a"))
	require.NoError(t, s.Set("dinner-b", "token-b"))
	require.NoError(t, s.Set("dinner-a", "token-a2"))

	token, ok := s.Get("dinner-a")
	require.True(t, ok)
	assert.Equal(t, "token-a2", token)

	token, ok = s.Get("dinner-b")
	require.True(t, ok)
	assert.Equal(t, "token-b", token)
}

func TestSessionStoreDelete(t *testing.T) {
	s, err := NewSessionStore(filepath.Join(t.TempDir(), "sessions.json"))
	require.NoError(t, err)

	require.NoError(t, s.Set("abc12345", "token-1"))
	require.NoError(t, s.Delete("abc12345"))

	_, ok := s.Get("abc12345")
	assert.False(t, ok)
}

func TestSessionStoreKeysCarryPrefix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	s, err := NewSessionStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("abc12345", "token-1"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), sessionKeyPrefix+"abc12345")
}

func TestSessionStoreCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "sessions.json")
	s, err := NewSessionStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("abc12345", "token-1"))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
