package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bookrental-backend/internal/shared"
)

const requestIDHeader = "X-Request-ID"

// RequestID reuses an incoming X-Request-ID or generates one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}

		c.Set(shared.ContextRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
