package errors

import "errors"

// Core error taxonomy. Every operation of the credential core fails with
// exactly one of these sentinels; the boundary layer maps them onto
// transport responses. None of them is retried internally.
var (
	// Refresh token chain.
	ErrMalformedToken   = errors.New("malformed token")
	ErrTokenNotFound    = errors.New("token not found")
	ErrOrgMismatch      = errors.New("organization mismatch")
	ErrExpiredOrRevoked = errors.New("token expired or revoked")
	ErrReuseDetected    = errors.New("refresh token reuse detected")
	ErrInvalidSecret    = errors.New("invalid token secret")

	// ErrRotationConflict is the repository-level compare-and-set miss on
	// replaced_by_id. Callers never see it: the refresh service reports a
	// lost rotation race as ErrReuseDetected.
	ErrRotationConflict = errors.New("refresh token rotation conflict")

	// Access token verification.
	ErrInvalidSignature        = errors.New("invalid token signature")
	ErrInvalidIssuerOrAudience = errors.New("invalid issuer or audience")
	ErrTokenExpired            = errors.New("token expired or not yet valid")
	ErrTokenRevoked            = errors.New("token revoked")

	// Authorization policy.
	ErrScopeDenied = errors.New("required scope not granted")

	// Key material loading.
	ErrKeyUnreadable = errors.New("key file unreadable")
	ErrKeyInvalid    = errors.New("invalid RSA key")
)
