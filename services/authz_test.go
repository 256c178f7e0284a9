package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go.pilab.hu/authcore/domain"
	autherrors "go.pilab.hu/authcore/errors"
)

func TestRequireScope(t *testing.T) {
	policy := AuthorizationPolicy{}
	claims := &domain.AccessTokenClaims{
		Subject: domain.UserSubject("u-1"),
		OrgID:   "org-1",
		Scopes:  []string{"profile.read", "orders.write"},
	}

	assert.NoError(t, policy.RequireScope(claims, "profile.read"))
	assert.NoError(t, policy.RequireScope(claims, "orders.write"))
	assert.ErrorIs(t, policy.RequireScope(claims, "orders.read"), autherrors.ErrScopeDenied)
	assert.ErrorIs(t, policy.RequireScope(claims, "Profile.Read"), autherrors.ErrScopeDenied)

	// Prefixes and supersets never match.
	assert.ErrorIs(t, policy.RequireScope(claims, "profile"), autherrors.ErrScopeDenied)
	assert.ErrorIs(t, policy.RequireScope(claims, "profile.read.extra"), autherrors.ErrScopeDenied)

	empty := &domain.AccessTokenClaims{Subject: domain.UserSubject("u-1")}
	assert.ErrorIs(t, policy.RequireScope(empty, "profile.read"), autherrors.ErrScopeDenied)
}

func TestRequireOrg(t *testing.T) {
	policy := AuthorizationPolicy{}
	claims := &domain.AccessTokenClaims{
		Subject: domain.UserSubject("u-1"),
		OrgID:   "org-1",
	}

	assert.NoError(t, policy.RequireOrg(claims, "org-1"))
	assert.ErrorIs(t, policy.RequireOrg(claims, "org-2"), autherrors.ErrOrgMismatch)
	assert.ErrorIs(t, policy.RequireOrg(claims, ""), autherrors.ErrOrgMismatch)

	// Empty on both sides is still a mismatch.
	blank := &domain.AccessTokenClaims{Subject: domain.UserSubject("u-1")}
	assert.ErrorIs(t, policy.RequireOrg(blank, ""), autherrors.ErrOrgMismatch)
}
