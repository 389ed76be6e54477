package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/FACorreiaa/family-ledger/pkg/interceptors"
)

// RouteRegistrar is implemented by every domain handler.
type RouteRegistrar interface {
	RegisterRoutes(r gin.IRouter)
}

// Pinger reports store liveness for /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig is everything NewRouter wires together.
type RouterConfig struct {
	Logger  *slog.Logger
	Tokens  interceptors.TokenParser
	Metrics *interceptors.Metrics
	Health  Pinger

	Auth RouteRegistrar
	API  []RouteRegistrar

	CORSOrigins        []string
	RateLimitPerSecond int
	RateLimitBurst     int
	AuthRateLimit      int
}

// NewRouter builds the HTTP surface: /health, the public /api/auth group
// behind a stricter limiter, and the authenticated /api group.
func NewRouter(rc RouterConfig) http.Handler {
	r := gin.New()
	r.Use(interceptors.Recover(rc.Logger), interceptors.Logger(rc.Logger))
	if rc.Metrics != nil {
		r.Use(rc.Metrics.Middleware())
	}
	r.Use(interceptors.NewRateLimiter(rate.Limit(rc.RateLimitPerSecond), rc.RateLimitBurst).Middleware())

	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := rc.Health.Ping(ctx); err != nil {
			rc.Logger.Error("health check failed", slog.Any("error", err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})
	})

	public := r.Group("/api", interceptors.NewRateLimiter(interceptors.PerMinute(rc.AuthRateLimit), rc.AuthRateLimit).Middleware())
	rc.Auth.RegisterRoutes(public)

	api := r.Group("/api", interceptors.Auth(rc.Tokens))
	for _, h := range rc.API {
		h.RegisterRoutes(api)
	}

	return cors.New(cors.Options{
		AllowedOrigins:   rc.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler(r)
}
