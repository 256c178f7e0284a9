package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// NewTokenSecret returns a fresh 256-bit random value encoded base64url
// without padding. This is the plaintext half of a refresh token; it is
// never stored, only its hash.
func NewTokenSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
