package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CtxRequestID is the gin context key the request ID is stored under.
const CtxRequestID = "RequestID"

// TraceMiddleware assigns each request an ID and echoes it back in the
// X-Request-ID header. An inbound X-Request-ID is honored so a relaying
// instance can correlate a delivery across hops.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(CtxRequestID, requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}
