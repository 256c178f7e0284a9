package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RefreshToken is one node of a rotation chain. The plaintext presented by
// clients is "<id>.<secret>"; only the secret's hash is stored here. A
// record is mutated exactly twice at most: to set RevokedAt and/or
// ReplacedByID. Records are never deleted by the core; retention is an
// external job.
type RefreshToken struct {
	ID           string     `bson:"_id"            json:"id"`
	TokenHash    string     `bson:"token_hash"     json:"-"`
	UserID       string     `bson:"user_id,omitempty"   json:"user_id,omitempty"`
	ClientID     string     `bson:"client_id,omitempty" json:"client_id,omitempty"`
	OrgID        string     `bson:"org_id"         json:"org_id"`
	IP           string     `bson:"ip,omitempty"   json:"ip,omitempty"`
	UserAgent    string     `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	ExpiresAt    time.Time  `bson:"expires_at"     json:"expires_at"`
	ReplacedByID string     `bson:"replaced_by_id,omitempty" json:"replaced_by_id,omitempty"`
	RevokedAt    *time.Time `bson:"revoked_at,omitempty"     json:"revoked_at,omitempty"`
	CreatedAt    time.Time  `bson:"created_at"     json:"created_at"`
}

// NewRefreshToken builds an active record owned by the given subject.
// Exactly one of user/client is populated; the exclusivity is enforced
// here rather than by the storage schema.
func NewRefreshToken(subject Subject, orgID, tokenHash, ip, userAgent string, now, expiresAt time.Time) (*RefreshToken, error) {
	if subject.ID == "" {
		return nil, errors.New("refresh token subject id is empty")
	}
	if orgID == "" {
		return nil, errors.New("refresh token organization id is empty")
	}
	rt := &RefreshToken{
		ID:        uuid.NewString(),
		TokenHash: tokenHash,
		OrgID:     orgID,
		IP:        ip,
		UserAgent: userAgent,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}
	switch subject.Kind {
	case SubjectUser:
		rt.UserID = subject.ID
	case SubjectClient:
		rt.ClientID = subject.ID
	default:
		return nil, fmt.Errorf("unknown subject kind %q", subject.Kind)
	}
	return rt, nil
}

// Subject reconstructs the owning subject from whichever reference is set.
func (rt *RefreshToken) Subject() Subject {
	if rt.ClientID != "" {
		return ClientSubject(rt.ClientID)
	}
	return UserSubject(rt.UserID)
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired(now time.Time) bool {
	return rt.ExpiresAt.Before(now)
}

// IsRotated reports whether the record already has a successor. A rotated
// record is permanently terminal: presenting it again is token reuse.
func (rt *RefreshToken) IsRotated() bool {
	return rt.ReplacedByID != ""
}
