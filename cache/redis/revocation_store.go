package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"go.pilab.hu/authcore/domain"
)

// RevocationStore implements the jti denylist on Redis. Entries expire on
// their own after the retention window, which must cover the longest
// access token lifetime plus clock skew.
type RevocationStore struct {
	client    *redis.Client
	prefix    string // Optional prefix for keys
	retention time.Duration
}

// NewRevocationStore creates a new [RevocationStore] instance.
func NewRevocationStore(client *redis.Client, prefix string, retention time.Duration) *RevocationStore {
	return &RevocationStore{
		client:    client,
		prefix:    prefix,
		retention: retention,
	}
}

func (r *RevocationStore) redisKey(jti string) string {
	return fmt.Sprintf("%s:revoked_jti:%s", r.prefix, jti)
}

// Add stores the denylist entry with the retention window as TTL.
func (r *RevocationStore) Add(ctx context.Context, jti, reason string, now time.Time) error {
	key := r.redisKey(jti)
	entry := map[string]interface{}{
		"reason":     reason,
		"created_at": now.Unix(),
	}
	if _, err := r.client.HSet(ctx, key, entry).Result(); err != nil {
		return fmt.Errorf("failed to store revoked jti in Redis: %w", err)
	}
	if _, err := r.client.Expire(ctx, key, r.retention).Result(); err != nil {
		return fmt.Errorf("failed to set expiry for revoked jti in Redis: %w", err)
	}
	return nil
}

// IsRevoked reports whether the jti is denylisted.
func (r *RevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, r.redisKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to query revoked jti in Redis: %w", err)
	}
	return n > 0, nil
}

var _ domain.RevocationStore = (*RevocationStore)(nil)
