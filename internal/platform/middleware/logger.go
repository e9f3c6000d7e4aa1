package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Twaynet/ASC-Inventory-sub003/internal/platform/auth"
)

// Logger emits one structured line per request. Health and metrics endpoints
// log at debug so scrapers do not drown out operator traffic, and the
// authenticated subject is attached when present since most writes here feed
// audit trails.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			method := c.Request().Method
			path := c.Request().URL.Path
			rid, _ := c.Get("request_id").(string)

			err := next(c)

			evt := logger.Info()
			switch {
			case err != nil:
				evt = logger.Error().Err(err)
			case path == "/healthz" || path == "/metrics":
				evt = logger.Debug()
			}

			// Auth middleware runs after us and swaps the request, so the
			// subject is only visible on the post-handler request context.
			if uid := auth.UserIDFromContext(c.Request().Context()); uid != "" {
				evt = evt.Str("user_id", uid)
			}

			evt.
				Str("request_id", rid).
				Str("method", method).
				Str("path", path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Msg("request")

			return err
		}
	}
}
