package echoapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"go.pilab.hu/authcore/cache"
	autherrors "go.pilab.hu/authcore/errors"
	"go.pilab.hu/authcore/services"
)

// OrgHeader carries the caller's organization context for the policy
// check, out of band of the token itself.
const OrgHeader = "X-Org-Id"

// AuthAPI exposes the credential core over HTTP. It is a thin adapter:
// every decision happens in the services, this layer only parses requests
// and maps the error taxonomy onto OAuth2-style responses.
type AuthAPI struct {
	tokens  *services.TokenService
	refresh *services.RefreshTokenService
	policy  services.AuthorizationPolicy
	jwks    *cache.JWKSCache
	jwksTTL time.Duration
}

// NewAuthAPI initializes the HTTP surface.
func NewAuthAPI(tokens *services.TokenService, refresh *services.RefreshTokenService, jwks *cache.JWKSCache, jwksTTL time.Duration) *AuthAPI {
	return &AuthAPI{
		tokens:  tokens,
		refresh: refresh,
		jwks:    jwks,
		jwksTTL: jwksTTL,
	}
}

// RegisterRoutes registers the credential endpoints.
func (a *AuthAPI) RegisterRoutes(e *echo.Echo) {
	e.GET("/.well-known/jwks.json", a.JWKSHandler)
	e.POST("/oauth2/token/refresh", a.RefreshHandler)
	e.POST("/oauth2/token/revoke", a.RevokeHandler)
	e.GET("/oauth2/userinfo", a.UserInfoHandler)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
	Org          string `json:"org"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshHandler rotates a refresh token and mints a fresh access token
// for the chain's subject. The new access token carries an empty scope
// set: scopes are granted at login, not re-derived on refresh.
func (a *AuthAPI) RefreshHandler(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, autherrors.NewInvalidRequest("invalid request body"))
	}
	if req.RefreshToken == "" || req.Org == "" {
		return c.JSON(http.StatusBadRequest, autherrors.NewInvalidRequest("refresh_token and org are required"))
	}

	ctx := c.Request().Context()
	record, plain, err := a.refresh.Rotate(ctx, req.RefreshToken, req.Org)
	if err != nil {
		return a.refreshError(c, err)
	}

	access, err := a.tokens.Mint(ctx, record.Subject(), record.OrgID, nil)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to mint access token after rotation")
		return c.JSON(http.StatusInternalServerError, autherrors.NewServerError("token minting failed"))
	}

	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  access,
		TokenType:    "Bearer",
		ExpiresIn:    int64(a.tokens.TTL().Seconds()),
		RefreshToken: plain,
	})
}

type revokeRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RevokeHandler invalidates a presented refresh token. Per RFC 7009 the
// endpoint answers 200 even for tokens it does not know.
func (a *AuthAPI) RevokeHandler(c echo.Context) error {
	var req revokeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, autherrors.NewInvalidRequest("invalid request body"))
	}
	if err := a.refresh.Revoke(c.Request().Context(), req.RefreshToken); err != nil {
		if errors.Is(err, autherrors.ErrMalformedToken) {
			return c.JSON(http.StatusBadRequest, autherrors.NewInvalidRequest("malformed token"))
		}
		log.Ctx(c.Request().Context()).Error().Err(err).Msg("refresh token revocation failed")
		return c.JSON(http.StatusInternalServerError, autherrors.NewServerError("revocation failed"))
	}
	return c.JSON(http.StatusOK, map[string]string{})
}

type userInfoResponse struct {
	Subject string   `json:"sub"`
	Org     string   `json:"org"`
	Scopes  []string `json:"scopes"`
	JTI     string   `json:"jti"`
}

// UserInfoHandler returns the verified claims of the presented bearer
// token, after the organization and scope policy checks.
func (a *AuthAPI) UserInfoHandler(c echo.Context) error {
	token, ok := bearerToken(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, autherrors.NewInvalidToken("missing bearer token"))
	}

	claims, err := a.tokens.VerifyAndParse(c.Request().Context(), token)
	if err != nil {
		return a.verifyError(c, err)
	}
	if err := a.policy.RequireOrg(claims, c.Request().Header.Get(OrgHeader)); err != nil {
		return c.JSON(http.StatusForbidden, autherrors.NewAccessDenied("organization mismatch"))
	}
	if err := a.policy.RequireScope(claims, "profile.read"); err != nil {
		return c.JSON(http.StatusForbidden, autherrors.NewAccessDenied("scope profile.read required"))
	}

	return c.JSON(http.StatusOK, userInfoResponse{
		Subject: claims.Subject.String(),
		Org:     claims.OrgID,
		Scopes:  claims.Scopes,
		JTI:     claims.JTI,
	})
}

// refreshError maps rotation failures onto responses. Everything that
// identifies which part of the token failed collapses into the same
// invalid_grant answer.
func (a *AuthAPI) refreshError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, autherrors.ErrMalformedToken):
		return c.JSON(http.StatusBadRequest, autherrors.NewInvalidRequest("malformed refresh token"))
	case errors.Is(err, autherrors.ErrTokenNotFound),
		errors.Is(err, autherrors.ErrOrgMismatch),
		errors.Is(err, autherrors.ErrExpiredOrRevoked),
		errors.Is(err, autherrors.ErrReuseDetected),
		errors.Is(err, autherrors.ErrInvalidSecret):
		return c.JSON(http.StatusUnauthorized, autherrors.NewInvalidGrant("invalid refresh token"))
	default:
		log.Ctx(c.Request().Context()).Error().Err(err).Msg("refresh token rotation failed")
		return c.JSON(http.StatusInternalServerError, autherrors.NewServerError("rotation failed"))
	}
}

func (a *AuthAPI) verifyError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, autherrors.ErrMalformedToken),
		errors.Is(err, autherrors.ErrInvalidSignature),
		errors.Is(err, autherrors.ErrInvalidIssuerOrAudience),
		errors.Is(err, autherrors.ErrTokenExpired),
		errors.Is(err, autherrors.ErrTokenRevoked):
		return c.JSON(http.StatusUnauthorized, autherrors.NewInvalidToken("invalid access token"))
	default:
		log.Ctx(c.Request().Context()).Error().Err(err).Msg("access token verification failed")
		return c.JSON(http.StatusInternalServerError, autherrors.NewServerError("verification failed"))
	}
}

func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
