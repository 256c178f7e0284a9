package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"go.pilab.hu/authcore/domain"
)

// MemoryRevocationStore keeps revoked jtis in process memory, for tests
// and single-node development setups. Entries are held for the retention
// window; past that the tokens they belong to are expired anyway.
type MemoryRevocationStore struct {
	cache     *ttlcache.Cache[string, string]
	retention time.Duration
}

func NewMemoryRevocationStore(retention time.Duration) *MemoryRevocationStore {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, string](retention),
		ttlcache.WithDisableTouchOnHit[string, string](),
	)

	// Start the cleanup process
	go cache.Start()

	return &MemoryRevocationStore{cache: cache, retention: retention}
}

// Add implements domain.RevocationStore.Add. The reason is kept as the
// cache value for debugging.
func (s *MemoryRevocationStore) Add(_ context.Context, jti, reason string, _ time.Time) error {
	s.cache.Set(jti, reason, s.retention)
	return nil
}

// IsRevoked implements domain.RevocationStore.IsRevoked.
func (s *MemoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	return s.cache.Has(jti), nil
}

var _ domain.RevocationStore = (*MemoryRevocationStore)(nil)
