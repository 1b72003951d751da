package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/b2bplatform/b2b-backend/internal/core/domain"
)

// RequireClaim enforces claim-based access control for staff-only routes:
// the token must be a staff token carrying at least one of the named claims.
func RequireClaim(anyOf ...string) echo.MiddlewareFunc {
	wanted := make(map[string]struct{}, len(anyOf))
	for _, name := range anyOf {
		wanted[name] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			kind, _ := c.Get(CtxKind).(string)
			if kind != string(domain.KindStaff) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}

			claims, _ := c.Get(CtxClaims).([]string)
			for _, name := range claims {
				if _, ok := wanted[name]; ok {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
	}
}
