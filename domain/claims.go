package domain

import "time"

// AccessTokenClaims is the verified content of an access token. Built at
// mint time, recovered at verification time, never persisted. Scopes and
// organization are exactly those embedded when the token was minted;
// verification does not re-derive them.
type AccessTokenClaims struct {
	Subject   Subject
	OrgID     string
	Scopes    []string
	JTI       string
	ExpiresAt time.Time
	IssuedAt  time.Time
	NotBefore time.Time
	KeyID     string
}

// HasScope reports whether the token was minted with the exact scope.
// Matching is case-sensitive, no wildcards.
func (c *AccessTokenClaims) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
