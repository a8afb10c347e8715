package middleware

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// HeaderRequestID carries the request ID back to the client.
	HeaderRequestID = "X-Request-Id"
)

// RequestLogger assigns each request an ID and logs method, path, status
// and duration with slog.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(HeaderRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}
			c.Response().Header().Set(HeaderRequestID, requestID)

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			slog.Info("request",
				"request_id", requestID,
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return err
		}
	}
}
