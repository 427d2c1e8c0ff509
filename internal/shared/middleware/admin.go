package middleware

import (
	"github.com/gin-gonic/gin"

	"bookrental-backend/internal/shared"
	"bookrental-backend/internal/shared/response"
)

// RequireRole lets through staff whose role (set by AuthMiddleware) is one of roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(shared.ContextStaffRole)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		response.Forbidden(c, "Access denied: insufficient role")
		c.Abort()
	}
}

// AdminMiddleware checks if the staff member has the admin role
func AdminMiddleware() gin.HandlerFunc {
	return RequireRole("admin")
}
