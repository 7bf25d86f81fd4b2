package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pageza/foodtracking/backend/internal/api"
	"github.com/pageza/foodtracking/backend/internal/metrics"
	"github.com/pageza/foodtracking/backend/internal/middleware"
	"github.com/pageza/foodtracking/backend/internal/service"
)

// Tokens issues and validates bearer tokens.
type Tokens interface {
	api.TokenIssuer
	middleware.TokenValidator
}

// Settings is what the diary and settings handlers need from the settings layer.
type Settings interface {
	api.SettingsManager
	api.LimitsProvider
}

// Dependencies holds everything the HTTP surface is built from. Images,
// SyncLimiter, HTTPMetrics and Ping are optional.
type Dependencies struct {
	Tokens         Tokens
	ClientSecret   string
	Entries        service.IEntryService
	Favorites      service.IFavoriteService
	Settings       Settings
	Images         api.ImageAttacher
	Syncer         api.Syncer
	SyncLimiter    *middleware.RateLimiter
	Registry       *prometheus.Registry
	HTTPMetrics    *metrics.HTTPMetrics
	Ping           func(ctx context.Context) error
	AllowedOrigins []string
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.ErrorHandler(api.StatusFor))
	router.Use(middleware.CORS(deps.AllowedOrigins...))
	if deps.HTTPMetrics != nil {
		router.Use(deps.HTTPMetrics.Middleware())
	}

	router.GET("/health", healthCheck(deps.Ping))
	if deps.Registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	api.NewAuthHandler(deps.Tokens, deps.ClientSecret).RegisterRoutes(v1)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Tokens))
	{
		api.NewEntryHandler(deps.Entries, deps.Settings, deps.Images).RegisterRoutes(protected)
		api.NewFavoriteHandler(deps.Favorites).RegisterRoutes(protected)
		api.NewSettingsHandler(deps.Settings).RegisterRoutes(protected)

		var limiter gin.HandlerFunc
		if deps.SyncLimiter != nil {
			limiter = deps.SyncLimiter.RateLimitMiddleware()
		}
		api.NewSyncHandler(deps.Syncer, limiter).RegisterRoutes(protected)
	}

	return router
}

func healthCheck(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Food tracking API is running",
			"version": "v1.0.0",
		})
	}
}
