package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/soumyacodes007/social-media-backend/internal/metrics"
)

// MetricsMiddleware collects HTTP metrics for Prometheus.
// Paths are labelled by route template to keep cardinality bounded.
func MetricsMiddleware() gin.HandlerFunc {
	m := metrics.Get()

	return func(c *gin.Context) {
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		active := m.HTTPActiveConnections.WithLabelValues(method, path)
		active.Inc()
		defer active.Dec()

		startTime := time.Now()
		c.Next()

		// numeric status so queries like status=~"5.." work
		status := strconv.Itoa(c.Writer.Status())
		m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(startTime).Seconds())
		if size := c.Writer.Size(); size > 0 {
			m.HTTPResponseSize.WithLabelValues(method, path, status).Observe(float64(size))
		}
	}
}
