package cache

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.pilab.hu/authcore/keyring"
)

func TestMemoryRevocationStore(t *testing.T) {
	store := NewMemoryRevocationStore(time.Minute)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Add(ctx, "jti-1", "logout", time.Now()))

	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryRevocationStoreExpiry(t *testing.T) {
	store := NewMemoryRevocationStore(50 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, "jti-1", "logout", time.Now()))

	assert.Eventually(t, func() bool {
		revoked, err := store.IsRevoked(ctx, "jti-1")
		return err == nil && !revoked
	}, time.Second, 10*time.Millisecond)
}

func TestJWKSCache(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	ring, err := keyring.New(keyring.KeyMaterial{Kid: "k1", Public: &key.PublicKey, Private: key})
	require.NoError(t, err)

	jwks := NewJWKSCache(keyring.NewPublisher(ring), time.Minute)

	first := jwks.Get()
	require.Len(t, first.Keys, 1)
	assert.Equal(t, "k1", first.Keys[0].Kid)
	assert.Equal(t, "RSA", first.Keys[0].Kty)

	// Second read serves the memoized document.
	second := jwks.Get()
	assert.Equal(t, first, second)
}
