package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avishaychauhan/EchoLabs/common/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestID reuses the caller's request id or mints one, echoes it in the
// response and adds it to the log fields of the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Header(RequestIDHeader, requestID)
		ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{RequestID: &requestID})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
