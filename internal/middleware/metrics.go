package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/magazine-flow-api/internal/service"
)

// unmeteredPaths are scraped or polled constantly and would drown the route histograms.
var unmeteredPaths = map[string]struct{}{
	"/metrics": {},
	"/health":  {},
}

// Metrics observes request latency per method, route template and status. Unknown routes share
// one label so random 404 paths cannot blow up cardinality.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		if _, skip := unmeteredPaths[c.Request.URL.Path]; skip {
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
