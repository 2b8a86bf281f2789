package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const sessionKeyPrefix = "potluck_session_"

// SessionStore keeps this device's session tokens, one per dinner share code,
// persisted as a JSON file.
type SessionStore struct {
	mu     sync.RWMutex
	tokens map[string]string
	file   string
}

// NewSessionStore creates a session store backed by the given file path.
func NewSessionStore(filePath string) (*SessionStore, error) {
	s := &SessionStore{
		tokens: make(map[string]string),
		file:   filePath,
	}

	if _, err := os.Stat(filePath); err == nil {
		if err := s.load(); err != nil {
			return nil, fmt.Errorf("failed to load sessions: %w", err)
		}
	}

	return s, nil
}

// DefaultSessionPath returns the per-user session file location.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config dir: %w", err)
	}
	return filepath.Join(dir, "potluck", "sessions.json"), nil
}

// Get returns the stored token for a share code, or false if this device has
// never joined that dinner.
func (s *SessionStore) Get(shareCode string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokens[sessionKeyPrefix+shareCode]
	return token, ok
}

// Set stores the token for a share code, replacing any previous one.
func (s *SessionStore) Set(shareCode, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[sessionKeyPrefix+shareCode] = token
	return s.save()
}

// Delete forgets the token for a share code.
func (s *SessionStore) Delete(shareCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, sessionKeyPrefix+shareCode)
	return s.save()
}

func (s *SessionStore) save() error {
	data, err := json.MarshalIndent(s.tokens, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sessions: %w", err)
	}

	dir := filepath.Dir(s.file)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	return os.WriteFile(s.file, data, 0600)
}

func (s *SessionStore) load() error {
	data, err := os.ReadFile(s.file)
	if err != nil {
		return fmt.Errorf("failed to read sessions file: %w", err)
	}

	if len(data) == 0 {
		s.tokens = make(map[string]string)
		return nil
	}

	if err := json.Unmarshal(data, &s.tokens); err != nil {
		return fmt.Errorf("failed to unmarshal sessions: %w", err)
	}

	return nil
}
