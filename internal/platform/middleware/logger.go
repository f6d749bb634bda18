package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/caremsg/caremsg/internal/platform/auth"
)

// Logger returns middleware that writes one structured log line per request.
// When the request carries a resolved principal the line includes who acted
// and in which role, so tier-gate rejections can be traced to a user.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid, _ := c.Get("request_id").(string)

			err := next(c)

			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}

			evt = evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Int64("bytes_out", c.Response().Size).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP())

			// The principal middleware runs after this one, so read the
			// request context as the handler left it.
			if p := auth.PrincipalFromContext(c.Request().Context()); p != nil {
				evt = evt.Int64("user_id", p.ID).Str("role", string(p.Role))
			}

			evt.Msg("request")
			return err
		}
	}
}
