package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"pizza_back_end/internal/logger"
	"pizza_back_end/internal/metrics"
)

// maxLimiters borne la table des limiteurs par client.
const maxLimiters = 10000

// RateLimiter limite le débit par adresse IP cliente, un seau par chemin.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	log      *logger.Logger
	metrics  *metrics.Metrics
}

func NewRateLimiter(rps float64, burst int, log *logger.Logger, m *metrics.Metrics) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
		log:      log,
		metrics:  m,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters[key]
	if !ok {
		if len(rl.limiters) >= maxLimiters {
			rl.limiters = make(map[string]*rate.Limiter)
		}
		l = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = l
	}
	return l
}

// Limit ne s'applique qu'aux chemins listés (ex. "users/login").
func (rl *RateLimiter) Limit(paths ...string) gin.HandlerFunc {
	guarded := make(map[string]bool, len(paths))
	for _, p := range paths {
		guarded[strings.Trim(p, "/")] = true
	}
	return func(c *gin.Context) {
		path := strings.Trim(c.Request.URL.Path, "/")
		if !guarded[path] {
			c.Next()
			return
		}
		ip := c.ClientIP()
		if !rl.limiter(ip + "|" + path).Allow() {
			rl.log.Warn("⛔ Trop de requêtes", "client_ip", ip, "path", path)
			if rl.metrics != nil {
				rl.metrics.RateLimited.WithLabelValues(path).Inc()
			}
			c.Header("Retry-After", retryAfter(rl.rate))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"Error": "Too many requests, try again later"})
			return
		}
		c.Next()
	}
}

// retryAfter : secondes avant qu'un nouveau jeton soit disponible.
func retryAfter(r rate.Limit) string {
	if r <= 0 {
		return "60"
	}
	return strconv.Itoa(int(math.Max(1, math.Ceil(1/float64(r)))))
}
