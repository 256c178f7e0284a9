package keyring

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	autherrors "go.pilab.hu/authcore/errors"
)

// KeyMaterial is a single RSA key tracked by the ring. Only the current
// signing key carries the private component.
type KeyMaterial struct {
	Kid     string
	Public  *rsa.PublicKey
	Private *rsa.PrivateKey
}

// KeyRing is the process-wide signing key snapshot: the current key pair
// plus the public halves of previously rotated keys, which keep verifying
// tokens minted before the rotation. It is loaded once at startup and
// never mutated, so readers need no locking. Rotating a key in production
// is a redeploy with updated configuration.
type KeyRing struct {
	current  KeyMaterial
	previous []KeyMaterial
}

// KeyFile points at PEM-encoded key material on disk. PrivatePath is only
// set for the current key.
type KeyFile struct {
	Kid         string
	PrivatePath string
	PublicPath  string
}

// Load reads and parses the configured PEM files into an immutable ring.
func Load(current KeyFile, previous []KeyFile) (*KeyRing, error) {
	priv, err := readPrivateKey(current.PrivatePath)
	if err != nil {
		return nil, fmt.Errorf("current key %s: %w", current.Kid, err)
	}
	pub, err := readPublicKey(current.PublicPath)
	if err != nil {
		return nil, fmt.Errorf("current key %s: %w", current.Kid, err)
	}
	ring := &KeyRing{current: KeyMaterial{Kid: current.Kid, Public: pub, Private: priv}}
	for _, kf := range previous {
		p, err := readPublicKey(kf.PublicPath)
		if err != nil {
			return nil, fmt.Errorf("previous key %s: %w", kf.Kid, err)
		}
		ring.previous = append(ring.previous, KeyMaterial{Kid: kf.Kid, Public: p})
	}
	return ring, nil
}

// New builds a ring from already-parsed keys. Used by tests and callers
// that generate ephemeral key pairs.
func New(current KeyMaterial, previous ...KeyMaterial) (*KeyRing, error) {
	if current.Private == nil || current.Public == nil {
		return nil, fmt.Errorf("%w: current key needs both components", autherrors.ErrKeyInvalid)
	}
	for _, k := range previous {
		if k.Public == nil {
			return nil, fmt.Errorf("%w: previous key %s has no public component", autherrors.ErrKeyInvalid, k.Kid)
		}
	}
	return &KeyRing{current: current, previous: previous}, nil
}

// SigningKey returns the kid and private key used for minting.
func (r *KeyRing) SigningKey() (string, *rsa.PrivateKey) {
	return r.current.Kid, r.current.Private
}

// PublicKey resolves a kid to a verification key, covering the current key
// and every retired one.
func (r *KeyRing) PublicKey(kid string) (*rsa.PublicKey, bool) {
	if kid == r.current.Kid {
		return r.current.Public, true
	}
	for _, k := range r.previous {
		if k.Kid == kid {
			return k.Public, true
		}
	}
	return nil, false
}

// Keys returns all key material, current first, then previous keys in
// configured order.
func (r *KeyRing) Keys() []KeyMaterial {
	keys := make([]KeyMaterial, 0, len(r.previous)+1)
	keys = append(keys, r.current)
	keys = append(keys, r.previous...)
	return keys
}

func readPrivateKey(path string) (*rsa.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", autherrors.ErrKeyUnreadable, path, err)
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("%w: %s: no PEM block", autherrors.ErrKeyInvalid, path)
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", autherrors.ErrKeyInvalid, path, err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s: not an RSA private key", autherrors.ErrKeyInvalid, path)
	}
	return key, nil
}

func readPublicKey(path string) (*rsa.PublicKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", autherrors.ErrKeyUnreadable, path, err)
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("%w: %s: no PEM block", autherrors.ErrKeyInvalid, path)
	}
	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", autherrors.ErrKeyInvalid, path, err)
	}
	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s: not an RSA public key", autherrors.ErrKeyInvalid, path)
	}
	return key, nil
}
