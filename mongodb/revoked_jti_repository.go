package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"go.pilab.hu/authcore/domain"
)

// RevokedJtiRepository stores the append-only jti denylist in MongoDB.
type RevokedJtiRepository struct {
	coll *mongo.Collection
}

func NewRevokedJtiRepository(db *mongo.Database) *RevokedJtiRepository {
	return &RevokedJtiRepository{coll: db.Collection(RevokedJtisCollection)}
}

func (r *RevokedJtiRepository) Add(ctx context.Context, jti, reason string, now time.Time) error {
	entry := domain.RevokedJti{JTI: jti, Reason: reason, CreatedAt: now}
	_, err := r.coll.InsertOne(ctx, entry)
	if mongo.IsDuplicateKeyError(err) {
		// Already denylisted; the store is append-only.
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to insert revoked jti: %w", err)
	}
	return nil
}

func (r *RevokedJtiRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := r.coll.FindOne(ctx, bson.M{"_id": jti}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query revoked jti: %w", err)
	}
	return true, nil
}

var _ domain.RevocationStore = (*RevokedJtiRepository)(nil)
