package keyring

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishOrderAndShape(t *testing.T) {
	current := generateKey(t)
	previous := generateKey(t)

	ring, err := New(
		KeyMaterial{Kid: "2025-06", Public: &current.PublicKey, Private: current},
		KeyMaterial{Kid: "2024-12", Public: &previous.PublicKey},
	)
	require.NoError(t, err)

	set := NewPublisher(ring).Publish()
	require.Len(t, set.Keys, 2)

	// Current signing key always comes first.
	assert.Equal(t, "2025-06", set.Keys[0].Kid)
	assert.Equal(t, "2024-12", set.Keys[1].Kid)

	for _, key := range set.Keys {
		assert.Equal(t, "RSA", key.Kty)
		assert.Equal(t, "RS256", key.Alg)
		assert.Equal(t, "sig", key.Use)
		assert.NotEmpty(t, key.N)
		assert.False(t, strings.ContainsAny(key.N, "+/="), "modulus must be base64url without padding")
	}
}

func TestPublishConventionalExponent(t *testing.T) {
	key := generateKey(t)
	ring, err := New(KeyMaterial{Kid: "k1", Public: &key.PublicKey, Private: key})
	require.NoError(t, err)

	set := NewPublisher(ring).Publish()
	require.Len(t, set.Keys, 1)
	// 65537 big-endian is {0x01, 0x00, 0x01}.
	assert.Equal(t, "AQAB", set.Keys[0].E)
}

func TestPublishModulusDecodes(t *testing.T) {
	key := generateKey(t)
	ring, err := New(KeyMaterial{Kid: "k1", Public: &key.PublicKey, Private: key})
	require.NoError(t, err)

	set := NewPublisher(ring).Publish()
	n, err := base64.RawURLEncoding.DecodeString(set.Keys[0].N)
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey.N.Bytes(), n)
	assert.Len(t, n, 256) // 2048-bit modulus
}
