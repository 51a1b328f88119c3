package convkey

import (
	"crypto/rand"
	"fmt"
)

// Conversation keys are short codes participants type by hand.
const (
	keyLength = 6
	alphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// New returns a random 6-character uppercase conversation key.
func New() (string, error) {
	buf := make([]byte, keyLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate conversation key failed: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}
