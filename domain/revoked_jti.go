package domain

import "time"

// RevokedJti is an append-only denylist entry. While present, any access
// token carrying the jti is unverifiable even before its natural expiry.
type RevokedJti struct {
	JTI       string    `bson:"_id"              json:"jti"`
	Reason    string    `bson:"reason,omitempty" json:"reason,omitempty"`
	CreatedAt time.Time `bson:"created_at"       json:"created_at"`
}
