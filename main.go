package main

import (
	"context"
	"log"
	"time"

	"github.com/bioforge-ai/bioforge-api/internal/api"
	"github.com/bioforge-ai/bioforge-api/internal/api/middleware"
	"github.com/bioforge-ai/bioforge-api/internal/bio"
	"github.com/bioforge-ai/bioforge-api/internal/config"
	"github.com/bioforge-ai/bioforge-api/internal/llm"
	"github.com/bioforge-ai/bioforge-api/internal/metrics"
	"github.com/bioforge-ai/bioforge-api/internal/observability"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const (
	sentryFlushTimeout    = 2 * time.Second
	environmentProduction = "production"
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize Sentry
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "bioforge-api@" + releaseVersion,         // Use embedded release version
			EnableTracing:    true,                                     // Enable tracing for spans
			TracesSampleRate: 1.0,                                      // 100% sampling for now, adjust based on volume
			EnableLogs:       true,                                     // Enable Sentry Logs feature
			Debug:            cfg.Environment != environmentProduction, // Enable debug in non-prod
			BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				// Filter out sensitive data
				if event.Request != nil {
					event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
				}
				return event
			},
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
			// Flush on shutdown
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		log.Println("⚠️  Sentry not configured (SENTRY_DSN not set)")
	}

	ctx := context.Background()

	// Initialize Langfuse for LLM observability (no-op client when disabled)
	langfuse := observability.InitializeLangfuse(ctx, cfg)

	// CloudWatch metrics only make sense when running on AWS
	var cloudwatch *metrics.Client
	if cfg.Environment == environmentProduction {
		cw, err := metrics.NewClient(ctx, cfg.Environment)
		if err != nil {
			log.Printf("⚠️  CloudWatch metrics disabled: %v", err)
		} else {
			cloudwatch = cw
			middleware.UseCloudWatch(cw)
			log.Println("✅ CloudWatch metrics initialized")
		}
	}

	// Wire the generation service: provider factory resolves models to
	// the OpenAI or Gemini client based on configured API keys.
	factory := llm.NewProviderFactory(cfg.OpenAIAPIKey, cfg.GeminiAPIKey)
	service := bio.NewService(bio.ServiceConfig{
		Resolver:     factory,
		DefaultModel: cfg.DefaultModel,
		Langfuse:     langfuse,
		Sentry:       metrics.NewSentryMetrics(),
		CloudWatch:   cloudwatch,
	})

	// Set Gin mode
	if cfg.Environment == environmentProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	router := api.SetupRouter(service, cfg, GetVersion())

	// Start server
	log.Printf("🚀 Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to start server:", err)
	}
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string)
	sensitiveKeys := map[string]bool{
		"authorization": true,
		"cookie":        true,
		"x-api-key":     true,
	}

	for k, v := range headers {
		if sensitiveKeys[k] {
			filtered[k] = "[REDACTED]"
		} else {
			filtered[k] = v
		}
	}
	return filtered
}
