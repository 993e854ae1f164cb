package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewID returns a 16-byte value from the system's CSPRNG rendered as 32
// lowercase hex characters. Used for user and session identifiers, where
// predictability would be an escalation path, so math/rand is off limits.
func NewID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
