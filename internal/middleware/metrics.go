package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pizza_back_end/internal/handlers"
	"pizza_back_end/internal/metrics"
)

// Metrics alimente les compteurs HTTP Prometheus.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.InFlight.Inc()
		defer m.InFlight.Dec()

		c.Next()

		route := handlers.RouteLabel(c.Request.URL.Path)
		m.Requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.Duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
