package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/todokit/backend/internal/interfaces/http/response"
	"golang.org/x/time/rate"
)

// RateLimit 进程级令牌桶限流，超限返回 429
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.Header("Retry-After", "1")
			response.Abort(c, http.StatusTooManyRequests, response.CodeRateLimited, "Too many requests")
			return
		}
		c.Next()
	}
}
