package keyring

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	autherrors "go.pilab.hu/authcore/errors"
)

func generateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func writePEM(t *testing.T, dir, name, blockType string, der []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	current := generateKey(t)
	previous := generateKey(t)

	privPath := writePEM(t, dir, "current.key", "RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(current))
	pubDER, err := x509.MarshalPKIXPublicKey(&current.PublicKey)
	require.NoError(t, err)
	pubPath := writePEM(t, dir, "current.pub", "PUBLIC KEY", pubDER)
	prevPath := writePEM(t, dir, "prev.pub", "RSA PUBLIC KEY", x509.MarshalPKCS1PublicKey(&previous.PublicKey))

	ring, err := Load(
		KeyFile{Kid: "2025-06", PrivatePath: privPath, PublicPath: pubPath},
		[]KeyFile{{Kid: "2024-12", PublicPath: prevPath}},
	)
	require.NoError(t, err)

	kid, signing := ring.SigningKey()
	assert.Equal(t, "2025-06", kid)
	assert.Equal(t, current.D, signing.D)

	pub, ok := ring.PublicKey("2024-12")
	require.True(t, ok)
	assert.Equal(t, previous.PublicKey.N, pub.N)

	_, ok = ring.PublicKey("unknown")
	assert.False(t, ok)
}

func TestLoadPKCS8PrivateKey(t *testing.T) {
	dir := t.TempDir()
	key := generateKey(t)

	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	privPath := writePEM(t, dir, "current.key", "PRIVATE KEY", der)
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPath := writePEM(t, dir, "current.pub", "PUBLIC KEY", pubDER)

	ring, err := Load(KeyFile{Kid: "k1", PrivatePath: privPath, PublicPath: pubPath}, nil)
	require.NoError(t, err)

	_, signing := ring.SigningKey()
	assert.Equal(t, key.D, signing.D)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(KeyFile{Kid: "k1", PrivatePath: "/nonexistent/key.pem", PublicPath: "/nonexistent/pub.pem"}, nil)
	assert.ErrorIs(t, err, autherrors.ErrKeyUnreadable)
}

func TestLoadGarbagePEM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "garbage.pem")
	require.NoError(t, os.WriteFile(path, []byte("not a pem file"), 0o600))

	_, err := Load(KeyFile{Kid: "k1", PrivatePath: path, PublicPath: path}, nil)
	assert.ErrorIs(t, err, autherrors.ErrKeyInvalid)
}

func TestNewRequiresPrivateComponent(t *testing.T) {
	key := generateKey(t)

	_, err := New(KeyMaterial{Kid: "k1", Public: &key.PublicKey})
	assert.ErrorIs(t, err, autherrors.ErrKeyInvalid)

	_, err = New(KeyMaterial{Kid: "k1", Public: &key.PublicKey, Private: key})
	assert.NoError(t, err)
}
