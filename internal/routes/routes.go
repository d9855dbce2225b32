package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pizza_back_end/internal/handlers"
	"pizza_back_end/internal/logger"
	"pizza_back_end/internal/metrics"
	"pizza_back_end/internal/middleware"
)

type Deps struct {
	Dispatcher     *handlers.Dispatcher
	RateLimiter    *middleware.RateLimiter
	Metrics        *metrics.Metrics
	Log            *logger.Logger
	AllowedOrigins []string
}

// RegisterRoutes monte la chaîne de middlewares puis une route unique :
// le Dispatcher résout lui-même ressource et action.
func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(d.Log))
	if d.Metrics != nil {
		r.Use(middleware.Metrics(d.Metrics))
	}
	r.Use(cors.New(corsConfig(d.AllowedOrigins)))
	if d.RateLimiter != nil {
		r.Use(d.RateLimiter.Limit("users/login", "users/register"))
	}

	r.Any("/*path", d.Dispatcher.Handle)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader, "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
