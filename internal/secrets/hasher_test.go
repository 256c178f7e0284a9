package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lightHasher keeps argon2 cheap so the suite stays fast.
func lightHasher() *Argon2idHasher {
	return &Argon2idHasher{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func TestHashVerifyRoundTrip(t *testing.T) {
	h := lightHasher()

	digest, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(digest, "$argon2id$"))
	assert.NotContains(t, digest, "correct horse")

	assert.NoError(t, h.Verify(digest, "correct horse battery staple"))
	assert.ErrorIs(t, h.Verify(digest, "wrong secret"), ErrHashMismatch)
	assert.ErrorIs(t, h.Verify(digest, ""), ErrHashMismatch)
}

func TestHashSaltsDiffer(t *testing.T) {
	h := lightHasher()

	first, err := h.Hash("secret")
	require.NoError(t, err)
	second, err := h.Hash("secret")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	assert.NoError(t, h.Verify(first, "secret"))
	assert.NoError(t, h.Verify(second, "secret"))
}

func TestVerifyParamsComeFromDigest(t *testing.T) {
	digest, err := lightHasher().Hash("secret")
	require.NoError(t, err)

	// A hasher configured differently still verifies older digests.
	other := &Argon2idHasher{
		Memory:      16 * 1024,
		Iterations:  2,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
	assert.NoError(t, other.Verify(digest, "secret"))
}

func TestVerifyRejectsMalformedDigests(t *testing.T) {
	h := lightHasher()
	for _, digest := range []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=8192,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$not-base64!$a2V5",
		"$argon2id$bogus$m=8192,t=1,p=1$c2FsdA$a2V5",
	} {
		err := h.Verify(digest, "secret")
		assert.Error(t, err, "digest %q", digest)
		assert.NotErrorIs(t, err, ErrHashMismatch, "digest %q should fail as malformed", digest)
	}
}

func TestNewTokenSecret(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		secret, err := NewTokenSecret()
		require.NoError(t, err)
		assert.Len(t, secret, 43)
		assert.NotContains(t, secret, "+")
		assert.NotContains(t, secret, "/")
		assert.NotContains(t, secret, "=")
		assert.False(t, seen[secret])
		seen[secret] = true
	}
}
