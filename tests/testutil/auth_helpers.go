package testutil

import (
	"github.com/gin-gonic/gin"
)

// MockAuth stands in for the JWT middleware, authenticating every request as subject.
// It sets the same context keys the middleware package reads.
func MockAuth(subject string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", subject)
		c.Set("access_token", "test-token")
		c.Next()
	}
}
