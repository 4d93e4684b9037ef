package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/platform/correlation"
)

// userHeader carries the opaque, already-authenticated user identifier.
// The authentication handshake happens upstream; the coordinator only
// consumes its result.
const userHeader = "X-User-ID"

const userContextKey = "userID"

// requireUser extracts the caller's user identifier and stores it in the
// echo context.
func (s *Server) requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID := c.Request().Header.Get(userHeader)
		if userID == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
		}
		c.Set(userContextKey, userID)
		return next(c)
	}
}

func currentUser(c echo.Context) string {
	userID, _ := c.Get(userContextKey).(string)
	return userID
}

// correlationMiddleware assigns each request a correlation ID so log lines
// across layers can be tied together.
func correlationMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get("X-Correlation-ID")
			if id == "" {
				id = correlation.NewID()
			}
			ctx := correlation.WithID(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Response().Header().Set("X-Correlation-ID", id)
			return next(c)
		}
	}
}
