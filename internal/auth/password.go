package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// legacySalt is the fixed application-wide salt the old client baked into
// every stored digest. It cannot change without orphaning those digests;
// new records never use it.
const legacySalt = "bizdesk-salt-v1"

// HashPassword hashes a password with bcrypt at the given cost. bcrypt
// embeds a random per-user salt, which is the fix for the legacy scheme's
// shared salt.
func HashPassword(password string, cost int) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(h), nil
}

// VerifyPassword checks password against the record's stored credential.
// migrate reports that the record holds a legacy credential and should be
// rewritten with a bcrypt hash now that the plaintext is known to match.
func VerifyPassword(u *User, password string) (ok bool, migrate bool) {
	switch u.CredentialKind() {
	case CredentialBcrypt:
		return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil, false
	case CredentialLegacyDigest:
		ok = constantTimeEqual(legacyDigest(password), u.PasswordHash)
		return ok, ok
	case CredentialPlaintext:
		ok = constantTimeEqual(password, u.LegacyPassword)
		return ok, ok
	default:
		return false, false
	}
}

// legacyDigest computes the old client's digest: lowercase hex of
// SHA-256(password + legacySalt).
func legacyDigest(password string) string {
	sum := sha256.Sum256([]byte(password + legacySalt))
	return hex.EncodeToString(sum[:])
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2")
}

// isLegacyDigest reports whether s looks like a legacy SHA-256 hex digest.
func isLegacyDigest(s string) bool {
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
