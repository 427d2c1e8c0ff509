package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"bookrental-backend/internal/shared"
	"bookrental-backend/internal/shared/response"
	"bookrental-backend/pkg/jwt"
)

// TokenValidator is satisfied by *jwt.Manager
type TokenValidator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// AuthMiddleware requires a valid "Bearer <token>" header and stores the
// staff identity in the gin context.
func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Missing authorization header")
			c.Abort()
			return
		}

		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := tokens.ValidateAccessToken(strings.TrimSpace(token))
		if err != nil {
			log.Debug().Err(err).Str("request_id", c.GetString(shared.ContextRequestID)).Msg("[Auth] token rejected")
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(shared.ContextStaffID, claims.StaffID)
		c.Set(shared.ContextStaffRole, claims.Role)
		c.Set(shared.ContextEmail, claims.Email)

		c.Next()
	}
}
