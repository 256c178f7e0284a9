package services

// SecretHasher is the opaque hash/verify capability used for refresh token
// secrets. Implementations must use a memory-hard algorithm; the default
// wiring is internal/secrets.Argon2idHasher.
type SecretHasher interface {
	Hash(secret string) (string, error)
	// Verify returns nil when the secret matches the stored digest.
	Verify(digest, secret string) error
}
