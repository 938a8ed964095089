package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"research-agenda/backend/pkg/metrics"
)

// Metrics 记录请求计数与耗时；route 取路由模板，未匹配的请求归为 unmatched
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
