package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// JWKSHandler serves the public verification keys. The document comes out
// of the short-lived cache; the header lets downstream proxies cache it
// for the same window.
func (a *AuthAPI) JWKSHandler(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(a.jwksTTL.Seconds())))
	return c.JSON(http.StatusOK, a.jwks.Get())
}
