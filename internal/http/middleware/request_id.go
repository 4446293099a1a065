package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"voyager.app/generator/common/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestID propagates an inbound request id or mints one, and attaches it
// to the request context's log fields.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" || len(rid) > 128 {
			rid = uuid.NewString()
		}
		c.Header(RequestIDHeader, rid)

		ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{RequestID: &rid})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
