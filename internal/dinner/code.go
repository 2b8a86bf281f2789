package dinner

import (
	"crypto/rand"
	"fmt"
)

// shareCodeAlphabet is URL-safe so codes can be pasted into a path segment
// without escaping.
const shareCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

// ShareCodeLength is the fixed length of every share code.
const ShareCodeLength = 8

// NewShareCode generates a random fixed-length share code. Uniqueness is
// enforced by the database; callers retry on conflict.
func NewShareCode() (string, error) {
	buf := make([]byte, ShareCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate share code: %w", err)
	}
	for i, b := range buf {
		buf[i] = shareCodeAlphabet[int(b)%len(shareCodeAlphabet)]
	}
	return string(buf), nil
}
