package api

import (
	"github.com/gin-gonic/gin"

	"github.com/bioforge-ai/bioforge-api/internal/api/handlers"
	apimiddleware "github.com/bioforge-ai/bioforge-api/internal/api/middleware"
	"github.com/bioforge-ai/bioforge-api/internal/bio"
	"github.com/bioforge-ai/bioforge-api/internal/config"
	webhandlers "github.com/bioforge-ai/bioforge-api/internal/web/handlers"
	"github.com/bioforge-ai/bioforge-api/internal/workflow"
)

func SetupRouter(service *bio.Service, cfg *config.Config, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking())

	// CORS middleware
	router.Use(apimiddleware.CORS(cfg.AllowedOrigins))

	// Health check
	healthHandler := handlers.NewHealthHandler(cfg)
	router.GET("/health", healthHandler.HealthCheck)

	// Session store shared by the session API and the metrics endpoint
	store := workflow.NewStore()

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(version, store)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	// Web UI
	webHandler := webhandlers.NewWebHandler()
	router.GET("/", webHandler.Home)

	// Gateway mode trusts X-User-* headers set by the authenticating
	// proxy; none passes everyone through with an anonymous identity
	authMW := apimiddleware.NoAuth()
	if cfg.IsGatewayMode() {
		authMW = apimiddleware.GatewayAuth()
	}

	v1 := router.Group("/api/v1")
	v1.Use(authMW)
	{
		// One-shot biography generation
		bioHandler := handlers.NewBioHandler(service)
		v1.POST("/bios", bioHandler.Generate)

		// Model and style discovery
		v1.GET("/models", handlers.ListModels)

		// Workflow sessions: stateful generate/copy flows driven over SSE
		sessionHandler := handlers.NewSessionHandler(service, store, cfg)
		v1.POST("/sessions", sessionHandler.Create)
		v1.GET("/sessions/:id", sessionHandler.Get)
		v1.POST("/sessions/:id/bios", sessionHandler.Submit)
		v1.PUT("/sessions/:id/style", sessionHandler.SetStyle)
		v1.POST("/sessions/:id/copy", sessionHandler.Copy)
		v1.GET("/sessions/:id/events", sessionHandler.Events)
		v1.DELETE("/sessions/:id", sessionHandler.Delete)
	}

	return router
}
