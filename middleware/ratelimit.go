package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshu-sajeev/issueflow/internal/ratelimit"
)

// RateLimit applies the fixed-window limiter to a route group. Every response
// carries the X-RateLimit-* headers; denied requests get a 429 with the reset
// time so callers can back off deterministically.
func RateLimit(l *ratelimit.Limiter, limit int, window time.Duration, displayLimit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := l.Check(ratelimit.ClientKey(c.Request), limit, window)

		for k, v := range ratelimit.Headers(res, displayLimit) {
			c.Header(k, v)
		}

		if !res.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":    "rate limit exceeded",
				"reset_at": res.ResetAt.UTC().Format(time.RFC3339),
			})
			return
		}

		c.Next()
	}
}
