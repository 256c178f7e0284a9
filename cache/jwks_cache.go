package cache

import (
	"time"

	"github.com/jellydator/ttlcache/v3"

	"go.pilab.hu/authcore/keyring"
)

const jwksCacheKey = "jwks"

// JWKSCache memoizes the rendered JWKS document. The key set only changes
// on deploy-time rotation, so a short TTL keeps the discovery endpoint
// cheap without serving stale keys for long.
type JWKSCache struct {
	cache     *ttlcache.Cache[string, keyring.JSONWebKeySet]
	publisher *keyring.Publisher
	ttl       time.Duration
}

func NewJWKSCache(publisher *keyring.Publisher, ttl time.Duration) *JWKSCache {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, keyring.JSONWebKeySet](ttl),
		ttlcache.WithDisableTouchOnHit[string, keyring.JSONWebKeySet](),
	)

	// Start the cleanup process
	go cache.Start()

	return &JWKSCache{cache: cache, publisher: publisher, ttl: ttl}
}

// Get returns the cached document, rendering a fresh one on miss.
func (c *JWKSCache) Get() keyring.JSONWebKeySet {
	if item := c.cache.Get(jwksCacheKey); item != nil {
		return item.Value()
	}
	set := c.publisher.Publish()
	c.cache.Set(jwksCacheKey, set, c.ttl)
	return set
}
