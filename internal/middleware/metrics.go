package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/peerconnect-portal/internal/service"
)

// Metrics records one observation per request. Unmatched routes are grouped
// under a single label so that probing cannot grow the series count.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
