package secrets

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrHashMismatch is returned by Verify when the secret does not match the
// stored digest.
var ErrHashMismatch = errors.New("secret does not match digest")

// Argon2idHasher implements the secret hash/verify capability with the
// memory-hard argon2id function. Digests use the PHC string format, so the
// verification parameters are read back from the digest itself and the
// defaults can change without invalidating stored hashes.
type Argon2idHasher struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// NewArgon2idHasher returns a hasher with the RFC 9106 second recommended
// parameter set (64 MiB, 3 passes).
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hash derives a digest for the secret under a fresh random salt.
func (h *Argon2idHasher) Hash(secret string) (string, error) {
	salt := make([]byte, h.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(secret), salt, h.Iterations, h.Memory, h.Parallelism, h.KeyLength)
	digest := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.Memory, h.Iterations, h.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))
	return digest, nil
}

// Verify returns nil when the secret matches the digest, ErrHashMismatch
// otherwise. The comparison is constant-time.
func (h *Argon2idHasher) Verify(digest, secret string) error {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return fmt.Errorf("unsupported digest format")
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return fmt.Errorf("malformed digest version: %w", err)
	}
	if version != argon2.Version {
		return fmt.Errorf("incompatible argon2 version %d", version)
	}
	var (
		memory, iterations uint32
		parallelism        uint8
	)
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return fmt.Errorf("malformed digest parameters: %w", err)
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("malformed digest salt: %w", err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("malformed digest key: %w", err)
	}
	got := argon2.IDKey([]byte(secret), salt, iterations, memory, parallelism, uint32(len(want)))
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrHashMismatch
	}
	return nil
}
