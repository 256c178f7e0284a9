package domain

import (
	"context"
	"time"
)

// RefreshTokenRepository persists rotation-chain records.
//
// MarkRotated is the single correctness-critical operation: it must be a
// compare-and-set on replaced_by_id so that two concurrent rotations of the
// same record resolve to exactly one winner. The loser gets
// errors.ErrRotationConflict and must be treated as token reuse.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *RefreshToken) error
	FindByID(ctx context.Context, id string) (*RefreshToken, error)
	// MarkRotated sets replaced_by_id and revoked_at on the record, but
	// only while no successor is recorded yet.
	MarkRotated(ctx context.Context, id, replacedByID string, now time.Time) error
	// Revoke sets revoked_at unless it is already set. Idempotent.
	Revoke(ctx context.Context, id string, now time.Time) error
}

// RevocationStore is the jti denylist consulted on every access token
// verification. Append-only; reads and writes are independent single
// operations with no cross-record invariants.
type RevocationStore interface {
	Add(ctx context.Context, jti, reason string, now time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
