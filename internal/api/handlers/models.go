package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bioforge-ai/bioforge-api/internal/bio"
	"github.com/bioforge-ai/bioforge-api/internal/prompt"
)

// ListModels returns the models and styles a generation request may name
func ListModels(c *gin.Context) {
	models := make([]gin.H, 0, len(bio.AllowedModels))
	for _, name := range bio.AllowedModelNames() {
		provider := "gemini"
		if strings.HasPrefix(name, "gpt-") {
			provider = "openai"
		}
		models = append(models, gin.H{
			"name":     name,
			"provider": provider,
			"default":  name == bio.DefaultModel,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"models":        models,
		"default_model": bio.DefaultModel,
		"styles":        prompt.Styles(),
	})
}
