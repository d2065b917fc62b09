package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bioforge-ai/bioforge-api/internal/config"
)

// HealthHandler reports service readiness
type HealthHandler struct {
	cfg *config.Config
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

// HealthCheck returns the health status of the API. Provider entries show
// whether a credential is present, not whether the upstream is reachable.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"default_model": h.cfg.DefaultModel,
		"providers": gin.H{
			"gemini": gin.H{"configured": h.cfg.HasGeminiKey()},
			"openai": gin.H{"configured": h.cfg.HasOpenAIKey()},
		},
	})
}
