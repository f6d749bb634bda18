package user

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/caremsg/caremsg/internal/platform/auth"
)

// PrincipalMiddleware resolves validated token claims to a users row and
// stores the caller on the request context. Requests without claims pass
// through unresolved; tier gates reject them downstream.
func PrincipalMiddleware(svc *Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			claims := auth.ClaimsFromContext(ctx)
			if claims == nil {
				return next(c)
			}

			u, err := svc.Resolve(ctx, claims)
			if err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
			}

			ctx = auth.WithPrincipal(ctx, u.Principal())
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
