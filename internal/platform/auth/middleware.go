package auth

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/badpower45/ttyyttmed/internal/platform/apierr"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal is the verified caller identity derived from a session token.
type Principal struct {
	UserID string
	Role   string
	Name   string
}

// Middleware validates the bearer session token on every request and stores
// the resulting Principal in the request context. A missing or invalid
// credential is an authentication failure with a deliberately generic
// message; authorization (role checks) happens later in RequireRole.
func Middleware(issuer *TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return apierr.E(apierr.Authentication, "missing credentials")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return apierr.E(apierr.Authentication, "invalid credentials")
			}

			claims, err := issuer.Verify(parts[1])
			if err != nil {
				return apierr.E(apierr.Authentication, "invalid credentials")
			}

			p := Principal{
				UserID: claims.Subject,
				Role:   claims.Role,
				Name:   claims.Name,
			}

			ctx := context.WithValue(c.Request().Context(), principalKey, p)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// PrincipalFromContext returns the verified caller, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// WithPrincipal returns a context carrying the given principal. Used by
// tests and by the booking path that runs without a session.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}
