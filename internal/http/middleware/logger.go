package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"voyager.app/generator/common/id"
	"voyager.app/generator/common/logger"
)

// Logger writes one line per request. On session routes the session id is
// added to the request's log fields first, so handlers below log it too.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		if raw := c.Param("id"); raw != "" {
			if sessionID, err := id.Parse(raw); err == nil {
				ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{SessionID: &sessionID})
				c.Request = c.Request.WithContext(ctx)
			}
		}

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"route", c.FullPath(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		ctx := c.Request.Context()
		switch {
		case status >= 500:
			slog.ErrorContext(ctx, "request failed", attrs...)
		case status >= 400:
			slog.WarnContext(ctx, "request error", attrs...)
		default:
			slog.InfoContext(ctx, "request", attrs...)
		}
	}
}
