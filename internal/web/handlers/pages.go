package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bioforge-ai/bioforge-api/pkg/embedded"
)

// WebHandler serves the embedded web UI
type WebHandler struct{}

func NewWebHandler() *WebHandler {
	return &WebHandler{}
}

// Home serves the single-page biography generator
func (h *WebHandler) Home(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", embedded.IndexHTML)
}
