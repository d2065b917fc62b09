package config

import "os"

// Config holds the application configuration
// Note: This is a stateless configuration - no database needed, generation
// results are transient. Billing and user management are handled by the
// bioforge-cloud gateway when AuthMode is "gateway".
type Config struct {
	// Environment
	Environment string
	Port        string

	// LLM API Keys
	OpenAIAPIKey string // OpenAI API key for GPT models
	GeminiAPIKey string // Google Gemini API key

	// Generation defaults
	DefaultModel string // Model used when a request does not name one

	// Observability
	SentryDSN         string // Sentry DSN for error tracking
	LangfusePublicKey string // Langfuse public key
	LangfuseSecretKey string // Langfuse secret key
	LangfuseHost      string // Langfuse host URL (cloud or self-hosted)
	LangfuseEnabled   bool   // Feature flag for Langfuse

	// CORS
	AllowedOrigins string // Comma-separated list, "*" allows any origin

	// Clipboard
	// When enabled, session copy actions write to the host clipboard
	// (local/desktop runs). Headless deployments leave this off: the
	// browser does the real copying and the server only tracks the
	// acknowledgment window.
	ClipboardEnabled bool

	// Auth mode
	// - "none": No auth (self-hosted, local dev)
	// - "gateway": Trust X-User-* headers from bioforge-cloud
	AuthMode string
}

func Load() *Config {
	return &Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		Port:              getEnv("PORT", "8080"),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		DefaultModel:      getEnv("DEFAULT_MODEL", "gemini-2.5-flash"),
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		LangfusePublicKey: getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey: getEnv("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:      getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfuseEnabled:   getEnv("LANGFUSE_ENABLED", "false") == "true",
		AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "*"),
		ClipboardEnabled:  getEnv("CLIPBOARD_ENABLED", "false") == "true",
		AuthMode:          getEnv("AUTH_MODE", "none"), // Default to no auth for self-hosted
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

// IsGatewayMode returns true if running behind the bioforge-cloud gateway
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == "gateway"
}

// HasGeminiKey reports whether a Gemini credential is configured
func (c *Config) HasGeminiKey() bool {
	return c.GeminiAPIKey != ""
}

// HasOpenAIKey reports whether an OpenAI credential is configured
func (c *Config) HasOpenAIKey() bool {
	return c.OpenAIAPIKey != ""
}
