package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/veridian-dev/auth-api/internal/service"
	"github.com/veridian-dev/auth-api/internal/util"
)

const (
	contextClaimsKey = "auth.claims"
	contextTokenKey  = "auth.token"
)

// RequireAuth guards a route with bearer-token authentication. Revocation is
// checked before the signature, so logged-out tokens fail even when still
// within their lifetime.
func RequireAuth(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if strings.TrimSpace(authHeader) == "" {
				return c.JSON(http.StatusUnauthorized, util.Error("missing authorization header"))
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return c.JSON(http.StatusUnauthorized, util.Error("invalid authorization header"))
			}
			token := strings.TrimSpace(parts[1])
			claims, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, util.Error(err.Error()))
			}
			c.Set(contextClaimsKey, claims)
			c.Set(contextTokenKey, token)
			return next(c)
		}
	}
}

// CurrentClaims returns the verified token claims for the request, when the
// route went through RequireAuth.
func CurrentClaims(c echo.Context) (*util.Claims, bool) {
	claims, ok := c.Get(contextClaimsKey).(*util.Claims)
	return claims, ok
}

// CurrentToken returns the raw bearer token for the request.
func CurrentToken(c echo.Context) (string, bool) {
	token, ok := c.Get(contextTokenKey).(string)
	return token, ok
}
