// Package router assembles the Gin engine from the application's modules.
package router

import (
	"net/http"
	"time"

	apphttp "eventcraft_backend/internal/http"
	"eventcraft_backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const (
	// Global fixed-window limit applied to every /api request.
	rateLimitRequests = 100
	rateLimitWindow   = 60 * time.Second
)

// New builds the HTTP engine: global middleware, health endpoints, and one
// route registration pass over the app's modules.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(corsMiddleware(app))

	engine.GET("/health", healthHandler(app))

	limiter := httpkit.NewIPRateLimiter(rateLimitRequests, rateLimitWindow, app.Logger)

	api := engine.Group("/api")
	api.Use(limiter.RateLimit())
	api.GET("/health", healthHandler(app))

	authMiddleware := httpkit.AuthRequired(app.Config)
	protected := api.Group("")
	protected.Use(authMiddleware)

	routerCtx := &apphttp.RouterContext{
		Engine:                 engine,
		API:                    api,
		Protected:              protected,
		Config:                 app.Config,
		AuthMiddleware:         authMiddleware,
		OptionalAuthMiddleware: httpkit.OptionalAuth(app.Config),
		AuthRateLimiter:        httpkit.NewAuthRateLimiter(app.Logger),
	}

	for _, module := range app.Modules {
		module.RegisterRoutes(routerCtx)
		app.Logger.Info("module routes registered", "module", module.Name())
	}

	return engine
}

func healthHandler(app *apphttp.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if app.Health != nil {
			if err := app.Health.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func corsMiddleware(app *apphttp.App) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "Stripe-Signature")
	corsConfig.AllowCredentials = app.Config.GetCORSAllowCreds()

	if app.Config.GetCORSAllowAll() {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = app.Config.GetCORSOrigins()
	}

	return cors.New(corsConfig)
}
