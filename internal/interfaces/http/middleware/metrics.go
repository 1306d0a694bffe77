package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/todokit/backend/internal/infrastructure/metrics"
)

// Metrics 按路由模板记录请求数与耗时
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
