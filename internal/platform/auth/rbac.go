package auth

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/badpower45/ttyyttmed/internal/platform/apierr"
)

// RequireRole returns middleware enforcing a static per-operation allow-list.
// ADMIN passes every gate. A caller with a valid credential but a role
// outside the list is denied with an authorization error, which is distinct
// from both authentication failures and not-found responses.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFromContext(c.Request().Context())
			if !ok {
				return apierr.E(apierr.Authentication, "missing credentials")
			}
			if p.Role == RoleAdmin {
				return next(c)
			}
			for _, required := range roles {
				if p.Role == required {
					return next(c)
				}
			}
			return apierr.E(apierr.Authorization,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}
