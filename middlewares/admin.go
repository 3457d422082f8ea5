package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminMiddleware restricts a route group to the configured admin usernames.
// Runs after AuthMiddleware, which sets the username in context.
func AdminMiddleware(allowed []string) gin.HandlerFunc {
	allowedSet := make(map[string]bool, len(allowed))
	for _, username := range allowed {
		allowedSet[username] = true
	}

	return func(c *gin.Context) {
		username, exists := c.Get("username")
		if !exists || !allowedSet[username.(string)] {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
