package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"go.pilab.hu/authcore/domain"
	autherrors "go.pilab.hu/authcore/errors"
)

// RefreshTokenRepository is the MongoDB implementation of
// domain.RefreshTokenRepository. Records are write-once except for the
// replaced_by_id/revoked_at fields; nothing here deletes.
type RefreshTokenRepository struct {
	coll *mongo.Collection
}

func NewRefreshTokenRepository(ctx context.Context, db *mongo.Database) (*RefreshTokenRepository, error) {
	coll := db.Collection(RefreshTokensCollection)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "org_id", Value: 1}, {Key: "user_id", Value: 1}, {Key: "revoked_at", Value: 1}}},
		{Keys: bson.D{{Key: "org_id", Value: 1}, {Key: "client_id", Value: 1}}},
		{Keys: bson.D{{Key: "expires_at", Value: 1}}},
	}
	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("failed to create refresh token indexes: %w", err)
	}
	return &RefreshTokenRepository{coll: coll}, nil
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	if _, err := r.coll.InsertOne(ctx, token); err != nil {
		return fmt.Errorf("failed to insert refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) FindByID(ctx context.Context, id string) (*domain.RefreshToken, error) {
	var token domain.RefreshToken
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&token)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, autherrors.ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find refresh token: %w", err)
	}
	return &token, nil
}

// MarkRotated is the compare-and-set that makes concurrent rotations safe:
// the filter matches only while replaced_by_id is absent, so exactly one
// of two racing rotations updates the record. The loser gets
// ErrRotationConflict.
func (r *RefreshTokenRepository) MarkRotated(ctx context.Context, id, replacedByID string, now time.Time) error {
	filter := bson.M{"_id": id, "replaced_by_id": bson.M{"$exists": false}}
	update := bson.M{"$set": bson.M{"replaced_by_id": replacedByID, "revoked_at": now}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to mark refresh token rotated: %w", err)
	}
	if res.MatchedCount == 0 {
		return autherrors.ErrRotationConflict
	}
	return nil
}

func (r *RefreshTokenRepository) Revoke(ctx context.Context, id string, now time.Time) error {
	filter := bson.M{"_id": id, "revoked_at": bson.M{"$exists": false}}
	update := bson.M{"$set": bson.M{"revoked_at": now}}
	if _, err := r.coll.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

var _ domain.RefreshTokenRepository = (*RefreshTokenRepository)(nil)
