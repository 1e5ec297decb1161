package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshu-sajeev/issueflow/common"
)

const userIDKey = "userID"

// RequireUser extracts the caller identity set by the fronting auth layer.
// Requests without it never reach the job endpoints.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader("X-User-ID"))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the identity stored by RequireUser.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// TriggerAuth guards the processing trigger with a shared-secret bearer
// credential. An empty configured secret disables the check, which is how
// scheduled invocations from inside the trust boundary run.
func TriggerAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		presented := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
			c.Error(common.Errf(http.StatusUnauthorized, "invalid trigger credential"))
			c.Abort()
			return
		}

		c.Next()
	}
}
