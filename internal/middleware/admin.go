package middleware

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// AdminOnlyMiddleware lets only admins through. It must run after Authenticate,
// which reloads the caller's role from the database on each request.
func AdminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := CurrentUser(c) // Get identity from context
		// Check if identity exists in context
		if !exists {
			abortUnauthorized(c, "Bearer", "Unauthorized")
			return
		}
		// Check if user role is admin
		if !user.IsAdmin() {
			// Identity mismatch is reported as unauthorized
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Admin access required"})
			return
		}
		// If admin, proceed to the next handler
		c.Next()
	}
}
