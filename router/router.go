package router

import (
	"github.com/FreightDesk/freight-desk-backend/config"
	"github.com/FreightDesk/freight-desk-backend/handlers"
	"github.com/FreightDesk/freight-desk-backend/middleware"
	"github.com/FreightDesk/freight-desk-backend/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Dependencies struct holds all dependencies required for setting up routes.
type Dependencies struct {
	Config        *config.Config
	RateLimiter   services.RateLimiterInterface
	IntakeHandler *handlers.IntakeHandler
	LoadHandler   *handlers.LoadHandler
	HealthHandler *handlers.HealthHandler
	Logger        *zap.SugaredLogger
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Global Middleware
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.SecurityHeadersMiddleware(deps.Config))
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))

	// Health and Metrics Routes
	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Versioned API Group (v1)
	v1 := r.Group("/v1")
	{
		// Inbound email webhook. Rate limited per client since the email
		// provider is the only expected caller.
		emailRoutes := v1.Group("/emails")
		if deps.RateLimiter != nil {
			emailRoutes.Use(middleware.APIRateLimiter(deps.RateLimiter, deps.Config.RateLimit))
		}
		emailRoutes.POST("/inbound", deps.IntakeHandler.ProcessInboundEmail)

		// Load Routes
		loadRoutes := v1.Group("/loads")
		{
			loadRoutes.GET("", deps.LoadHandler.ListLoads)
			loadRoutes.GET("/:id", deps.LoadHandler.GetLoad)
			loadRoutes.GET("/:id/validation", deps.LoadHandler.GetLoadValidation)
			loadRoutes.PATCH("/:id/status", deps.LoadHandler.UpdateLoadStatus)
			loadRoutes.POST("/:id/quote", deps.LoadHandler.CreateQuote)
			loadRoutes.GET("/:id/quotes", deps.LoadHandler.ListQuotes)
		}
	}

	return r
}
