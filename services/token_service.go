package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"go.pilab.hu/authcore/domain"
	autherrors "go.pilab.hu/authcore/errors"
	"go.pilab.hu/authcore/internal/metrics"
	"go.pilab.hu/authcore/keyring"
)

// TokenConfig carries the issuance parameters shared by every mint and
// verification. It is passed explicitly so tests can run with fixed
// issuers and injected clocks.
type TokenConfig struct {
	Issuer    string
	Audience  string
	AccessTTL time.Duration
	// ClockSkew widens both temporal bounds symmetrically at verification.
	ClockSkew time.Duration
}

// TokenService mints and verifies RS256 access tokens using the process
// key ring. Verification consults nothing but the ring and the revocation
// store: scopes and organization come out exactly as they went in at mint
// time.
type TokenService struct {
	ring    *keyring.KeyRing
	revoked domain.RevocationStore
	cfg     TokenConfig
	clock   domain.Clock
}

// NewTokenService creates a new TokenService instance.
func NewTokenService(ring *keyring.KeyRing, revoked domain.RevocationStore, cfg TokenConfig, clock domain.Clock) *TokenService {
	return &TokenService{ring: ring, revoked: revoked, cfg: cfg, clock: clock}
}

// TTL is the configured access token lifetime, exposed for the boundary's
// expires_in field.
func (s *TokenService) TTL() time.Duration {
	return s.cfg.AccessTTL
}

type accessClaims struct {
	jwt.RegisteredClaims
	Org   string `json:"org"`
	Scope string `json:"scope"`
}

// Mint signs a fresh access token for the subject, bound to exactly one
// organization and the given scope set. The scope set is joined into a
// single space-separated claim; the jti is a fresh uuid.
func (s *TokenService) Mint(ctx context.Context, subject domain.Subject, orgID string, scopes []string) (string, error) {
	now := s.clock.Now()
	kid, key := s.ring.SigningKey()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			Subject:   subject.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTTL)),
			ID:        uuid.NewString(),
		},
		Org:   orgID,
		Scope: strings.Join(scopes, " "),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid

	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	metrics.TokensMintedTotal.Inc()
	log.Ctx(ctx).Debug().
		Str("sub", claims.Subject).
		Str("org", orgID).
		Str("jti", claims.ID).
		Msg("access token minted")
	return signed, nil
}

// VerifyAndParse validates a presented access token against every key in
// the ring, the configured issuer/audience, the temporal claims (with
// symmetric clock skew), and the revocation store, in that order.
func (s *TokenService) VerifyAndParse(ctx context.Context, tokenString string) (*domain.AccessTokenClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience),
		jwt.WithLeeway(s.cfg.ClockSkew),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)

	var claims accessClaims
	token, err := parser.ParseWithClaims(tokenString, &claims, s.verificationKey)
	if err != nil {
		return nil, s.verificationFailed(translateJWTError(err))
	}

	subject, err := domain.ParseSubject(claims.Subject)
	if err != nil {
		return nil, s.verificationFailed(fmt.Errorf("%w: %v", autherrors.ErrMalformedToken, err))
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("revocation check: %w", err)
	}
	if revoked {
		return nil, s.verificationFailed(autherrors.ErrTokenRevoked)
	}

	kid, _ := token.Header["kid"].(string)
	metrics.TokenVerificationsTotal.WithLabelValues("ok").Inc()
	return &domain.AccessTokenClaims{
		Subject:   subject,
		OrgID:     claims.Org,
		Scopes:    splitScopes(claims.Scope),
		JTI:       claims.ID,
		ExpiresAt: numericTime(claims.ExpiresAt),
		IssuedAt:  numericTime(claims.IssuedAt),
		NotBefore: numericTime(claims.NotBefore),
		KeyID:     kid,
	}, nil
}

// verificationKey resolves the token's kid header against the ring. Tokens
// signed with a key the ring never knew fail as invalid signatures.
func (s *TokenService) verificationKey(token *jwt.Token) (any, error) {
	kid, _ := token.Header["kid"].(string)
	key, ok := s.ring.PublicKey(kid)
	if !ok {
		return nil, fmt.Errorf("unknown kid %q", kid)
	}
	return key, nil
}

func (s *TokenService) verificationFailed(err error) error {
	metrics.TokenVerificationsTotal.WithLabelValues(verificationOutcome(err)).Inc()
	return err
}

// translateJWTError maps golang-jwt validation failures onto the core
// taxonomy. Issuer/audience mismatches take precedence over temporal
// failures when golang-jwt reports both.
func translateJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", autherrors.ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidAudience):
		return autherrors.ErrInvalidIssuerOrAudience
	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
		return autherrors.ErrTokenExpired
	default:
		return fmt.Errorf("%w: %v", autherrors.ErrInvalidSignature, err)
	}
}

func verificationOutcome(err error) string {
	switch {
	case errors.Is(err, autherrors.ErrMalformedToken):
		return "malformed"
	case errors.Is(err, autherrors.ErrInvalidIssuerOrAudience):
		return "invalid_issuer_or_audience"
	case errors.Is(err, autherrors.ErrTokenExpired):
		return "expired"
	case errors.Is(err, autherrors.ErrTokenRevoked):
		return "revoked"
	default:
		return "invalid_signature"
	}
}

func splitScopes(scope string) []string {
	if scope == "" {
		return nil
	}
	return strings.Fields(scope)
}

func numericTime(d *jwt.NumericDate) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}
