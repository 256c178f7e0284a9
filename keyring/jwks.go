package keyring

import (
	"encoding/base64"
	"math/big"
)

// JSONWebKey is a single published verification key.
type JSONWebKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// JSONWebKeySet is the JWKS document served on the discovery endpoint.
type JSONWebKeySet struct {
	Keys []JSONWebKey `json:"keys"`
}

// Publisher renders the ring's public keys in JWKS form. The output only
// changes on deploy-time key rotation, so callers are expected to cache it
// (the HTTP boundary does, for 300s).
type Publisher struct {
	ring *KeyRing
}

func NewPublisher(ring *KeyRing) *Publisher {
	return &Publisher{ring: ring}
}

// Publish returns the key set, current signing key first, previous keys in
// configured order. Modulus and exponent are base64url-encoded without
// padding.
func (p *Publisher) Publish() JSONWebKeySet {
	material := p.ring.Keys()
	keys := make([]JSONWebKey, 0, len(material))
	for _, k := range material {
		keys = append(keys, JSONWebKey{
			Kid: k.Kid,
			Kty: "RSA",
			Alg: "RS256",
			Use: "sig",
			N:   base64.RawURLEncoding.EncodeToString(k.Public.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(k.Public.E)).Bytes()),
		})
	}
	return JSONWebKeySet{Keys: keys}
}
