package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pizza_back_end/internal/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger attribue un identifiant à chaque requête et journalise
// méthode, chemin, statut et durée.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)

		c.Next()

		status := c.Writer.Status()
		kv := []interface{}{
			"request_id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		switch {
		case status >= 500:
			log.Error("requête", kv...)
		case status >= 400:
			log.Warn("requête", kv...)
		default:
			log.Info("requête", kv...)
		}
	}
}
