package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Event is a security-relevant action on a credential. Audit events go
// out on their own log stream so they can be shipped separately from
// application logs.
type Event struct {
	Action  string
	Subject string
	OrgID   string
	TokenID string
	Detail  string
	At      time.Time
}

// Actions recorded by the credential core.
const (
	ActionRefreshTokenIssued  = "refresh_token.issued"
	ActionRefreshTokenRotated = "refresh_token.rotated"
	ActionRefreshTokenRevoked = "refresh_token.revoked"
	ActionReuseDetected       = "refresh_token.reuse_detected"
	ActionChainRevoked        = "refresh_token.chain_revoked"
)

var auditLogger = log.With().Str("stream", "audit").Logger()

// Log records an audit event. A zero At defaults to the current time.
func Log(ctx context.Context, event Event) {
	at := event.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	auditLogger.WithLevel(zerolog.InfoLevel).
		Ctx(ctx).
		Str("action", event.Action).
		Str("subject", event.Subject).
		Str("org_id", event.OrgID).
		Str("token_id", event.TokenID).
		Str("detail", event.Detail).
		Time("at", at).
		Msg("audit event")
}
