package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"go.pilab.hu/authcore/domain"
	autherrors "go.pilab.hu/authcore/errors"
	"go.pilab.hu/authcore/internal/audit"
	"go.pilab.hu/authcore/internal/metrics"
	"go.pilab.hu/authcore/internal/secrets"
)

// maxChainLength caps chain traversal so a corrupted or cyclic record
// store cannot wedge a revocation walk.
const maxChainLength = 1000

// RefreshTokenService manages the refresh token lifecycle: issuance,
// single-use rotation with reuse detection, and chain-wide revocation.
// All chain mutation goes through the repository's compare-and-set, so
// concurrent rotations of the same record resolve to one winner.
type RefreshTokenService struct {
	repo   domain.RefreshTokenRepository
	hasher SecretHasher
	ttl    time.Duration
	clock  domain.Clock
}

// NewRefreshTokenService creates a new RefreshTokenService instance.
func NewRefreshTokenService(repo domain.RefreshTokenRepository, hasher SecretHasher, ttl time.Duration, clock domain.Clock) *RefreshTokenService {
	return &RefreshTokenService{repo: repo, hasher: hasher, ttl: ttl, clock: clock}
}

// Issue creates a fresh chain root for the subject and returns the record
// together with the plaintext token "<record id>.<secret>". Only the
// secret's argon2id hash is persisted.
func (s *RefreshTokenService) Issue(ctx context.Context, subject domain.Subject, orgID, ip, userAgent string) (*domain.RefreshToken, string, error) {
	secret, err := secrets.NewTokenSecret()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate refresh secret: %w", err)
	}
	digest, err := s.hasher.Hash(secret)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash refresh secret: %w", err)
	}
	now := s.clock.Now()
	record, err := domain.NewRefreshToken(subject, orgID, digest, ip, userAgent, now, now.Add(s.ttl))
	if err != nil {
		return nil, "", err
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, "", fmt.Errorf("failed to persist refresh token: %w", err)
	}
	metrics.RefreshTokensIssuedTotal.Inc()
	audit.Log(ctx, audit.Event{
		Action:  audit.ActionRefreshTokenIssued,
		Subject: subject.String(),
		OrgID:   orgID,
		TokenID: record.ID,
		At:      now,
	})
	return record, record.ID + "." + secret, nil
}

// Rotate exchanges a presented refresh token for a successor. Each record
// rotates at most once: presenting an already-rotated record is treated as
// evidence of compromise and revokes the entire chain before the call
// fails with ErrReuseDetected. The reuse check runs before the secret is
// verified.
func (s *RefreshTokenService) Rotate(ctx context.Context, plain, orgID string) (*domain.RefreshToken, string, error) {
	id, secret, err := splitPlainToken(plain)
	if err != nil {
		return nil, "", err
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if record.OrgID != orgID {
		return nil, "", autherrors.ErrOrgMismatch
	}
	now := s.clock.Now()
	if record.IsRotated() {
		s.handleReuse(ctx, record, now)
		return nil, "", autherrors.ErrReuseDetected
	}
	if record.IsRevoked() || record.IsExpired(now) {
		return nil, "", autherrors.ErrExpiredOrRevoked
	}
	if err := s.hasher.Verify(record.TokenHash, secret); err != nil {
		return nil, "", autherrors.ErrInvalidSecret
	}

	successor, plainNext, err := s.Issue(ctx, record.Subject(), record.OrgID, record.IP, record.UserAgent)
	if err != nil {
		return nil, "", err
	}
	if err := s.repo.MarkRotated(ctx, record.ID, successor.ID, now); err != nil {
		if errors.Is(err, autherrors.ErrRotationConflict) {
			// Lost the race against a concurrent rotation. The successor
			// minted above never reaches a caller, so revoke it along with
			// the rest of the chain.
			if revokeErr := s.repo.Revoke(ctx, successor.ID, now); revokeErr != nil {
				log.Ctx(ctx).Error().Err(revokeErr).
					Str("refresh_token_id", successor.ID).
					Msg("failed to revoke orphaned successor")
			}
			s.handleReuse(ctx, record, now)
			return nil, "", autherrors.ErrReuseDetected
		}
		return nil, "", fmt.Errorf("failed to mark refresh token rotated: %w", err)
	}
	metrics.RefreshRotationsTotal.Inc()
	audit.Log(ctx, audit.Event{
		Action:  audit.ActionRefreshTokenRotated,
		Subject: record.Subject().String(),
		OrgID:   record.OrgID,
		TokenID: record.ID,
		Detail:  "replaced by " + successor.ID,
		At:      now,
	})
	return successor, plainNext, nil
}

// Revoke invalidates a single refresh token presented by its owner.
// Unknown ids and secret mismatches are deliberately indistinguishable
// silent no-ops, so the endpoint cannot be used as an enumeration oracle.
func (s *RefreshTokenService) Revoke(ctx context.Context, plain string) error {
	id, secret, err := splitPlainToken(plain)
	if err != nil {
		return err
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, autherrors.ErrTokenNotFound) {
			return nil
		}
		return err
	}
	if err := s.hasher.Verify(record.TokenHash, secret); err != nil {
		return nil
	}
	if record.IsRevoked() {
		return nil
	}
	now := s.clock.Now()
	if err := s.repo.Revoke(ctx, record.ID, now); err != nil {
		return err
	}
	audit.Log(ctx, audit.Event{
		Action:  audit.ActionRefreshTokenRevoked,
		Subject: record.Subject().String(),
		OrgID:   record.OrgID,
		TokenID: record.ID,
		At:      now,
	})
	return nil
}

// RevokeChain revokes every node reachable from the given record by
// following replaced_by links forward. Idempotent.
func (s *RefreshTokenService) RevokeChain(ctx context.Context, record *domain.RefreshToken) error {
	return s.revokeChainFrom(ctx, record, s.clock.Now())
}

// handleReuse is the intrusion response for a replayed rotated token. The
// chain revocation must complete even if the caller's request is already
// gone, hence the detached context.
func (s *RefreshTokenService) handleReuse(ctx context.Context, record *domain.RefreshToken, now time.Time) {
	log.Ctx(ctx).Warn().
		Str("refresh_token_id", record.ID).
		Str("org_id", record.OrgID).
		Msg("refresh token reuse detected, revoking chain")
	metrics.RefreshReuseDetectedTotal.Inc()
	audit.Log(ctx, audit.Event{
		Action:  audit.ActionReuseDetected,
		Subject: record.Subject().String(),
		OrgID:   record.OrgID,
		TokenID: record.ID,
		At:      now,
	})
	detached := context.WithoutCancel(ctx)
	// Re-read the record: a rotation that won a race an instant ago has
	// already linked its successor, and the walk must reach it.
	if fresh, err := s.repo.FindByID(detached, record.ID); err == nil {
		record = fresh
	}
	if err := s.revokeChainFrom(detached, record, now); err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("refresh_token_id", record.ID).
			Msg("chain revocation failed")
		return
	}
	audit.Log(detached, audit.Event{
		Action:  audit.ActionChainRevoked,
		Subject: record.Subject().String(),
		OrgID:   record.OrgID,
		TokenID: record.ID,
		At:      now,
	})
}

func (s *RefreshTokenService) revokeChainFrom(ctx context.Context, record *domain.RefreshToken, now time.Time) error {
	node := record
	for i := 0; i < maxChainLength; i++ {
		if !node.IsRevoked() {
			if err := s.repo.Revoke(ctx, node.ID, now); err != nil {
				return fmt.Errorf("failed to revoke chain node %s: %w", node.ID, err)
			}
		}
		if node.ReplacedByID == "" {
			return nil
		}
		next, err := s.repo.FindByID(ctx, node.ReplacedByID)
		if err != nil {
			// A dangling link terminates the walk; the nodes up to here are
			// already revoked.
			if errors.Is(err, autherrors.ErrTokenNotFound) {
				return nil
			}
			return err
		}
		node = next
	}
	log.Ctx(ctx).Error().
		Str("refresh_token_id", record.ID).
		Msg("chain revocation hit traversal cap")
	return nil
}

func splitPlainToken(plain string) (id, secret string, err error) {
	id, secret, ok := strings.Cut(plain, ".")
	if !ok || id == "" || secret == "" {
		return "", "", autherrors.ErrMalformedToken
	}
	return id, secret, nil
}
