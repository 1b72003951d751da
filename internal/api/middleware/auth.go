package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/b2bplatform/b2b-backend/internal/security/token"
)

// Context keys set by Auth for downstream handlers.
const (
	CtxPrincipalID = "principal_id"
	CtxKind        = "kind"
	CtxClaims      = "claims"
)

// Auth validates the bearer token and injects principal identity and claims
// into the echo context.
func Auth(issuer *token.Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := issuer.Parse(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(CtxPrincipalID, claims.PrincipalID)
			c.Set(CtxKind, string(claims.Kind))
			c.Set(CtxClaims, claims.Claims)

			return next(c)
		}
	}
}
