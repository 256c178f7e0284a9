package services

import (
	"go.pilab.hu/authcore/domain"
	autherrors "go.pilab.hu/authcore/errors"
)

// AuthorizationPolicy evaluates verified claims against a request's
// required scope and organization context. The two predicates are
// independent; callers combine them with logical AND and map each failure
// distinctly.
type AuthorizationPolicy struct{}

// RequireScope checks exact, case-sensitive scope membership. No
// wildcards, no hierarchy.
func (AuthorizationPolicy) RequireScope(claims *domain.AccessTokenClaims, required string) error {
	if claims.HasScope(required) {
		return nil
	}
	return autherrors.ErrScopeDenied
}

// RequireOrg checks that the caller-supplied organization identifier
// equals the one the token was minted for. An empty caller value never
// matches.
func (AuthorizationPolicy) RequireOrg(claims *domain.AccessTokenClaims, orgID string) error {
	if orgID != "" && orgID == claims.OrgID {
		return nil
	}
	return autherrors.ErrOrgMismatch
}
