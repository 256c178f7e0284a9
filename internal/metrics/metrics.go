package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

var (
	TokensMintedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "authcore_tokens_minted_total",
		Help: "Total number of access tokens minted.",
	})
	TokenVerificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "authcore_token_verifications_total",
		Help: "Total number of access token verifications, by outcome.",
	}, []string{"outcome"})
	RefreshTokensIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "authcore_refresh_tokens_issued_total",
		Help: "Total number of refresh tokens issued.",
	})
	RefreshRotationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "authcore_refresh_rotations_total",
		Help: "Total number of successful refresh token rotations.",
	})
	RefreshReuseDetectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "authcore_refresh_reuse_detected_total",
		Help: "Total number of refresh token reuse detections.",
	})
)

// Register registers the core metrics on the given registerer. Call once
// at startup; duplicate registration is logged and ignored so tests can
// wire multiple instances.
func Register(reg prometheus.Registerer) {
	collectors := []prometheus.Collector{
		TokensMintedTotal,
		TokenVerificationsTotal,
		RefreshTokensIssuedTotal,
		RefreshRotationsTotal,
		RefreshReuseDetectedTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			log.Warn().Err(err).Msg("failed to register metric")
		}
	}
}
