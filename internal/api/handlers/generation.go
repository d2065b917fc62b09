package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bioforge-ai/bioforge-api/internal/bio"
	"github.com/bioforge-ai/bioforge-api/internal/llm"
	"github.com/bioforge-ai/bioforge-api/internal/logger"
	"github.com/bioforge-ai/bioforge-api/internal/markdown"
	"github.com/bioforge-ai/bioforge-api/internal/prompt"
)

// BioHandler serves one-shot biography generation
type BioHandler struct {
	service *bio.Service
}

func NewBioHandler(service *bio.Service) *BioHandler {
	return &BioHandler{service: service}
}

type GenerateBioRequest struct {
	Info     string `json:"info"`     // Raw information about the person
	Style    string `json:"style"`    // professional (default) or social
	Model    string `json:"model"`    // e.g. gemini-2.5-flash, gpt-5-mini
	Provider string `json:"provider"` // Optional override: openai, gemini
	Stream   bool   `json:"stream"`   // Enable SSE streaming
}

// Generate produces a biography from submitted information
func (h *BioHandler) Generate(c *gin.Context) {
	var req GenerateBioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	style, err := parseStyleParam(req.Style)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bioReq := bio.Request{
		Info:     req.Info,
		Style:    style,
		Model:    req.Model,
		Provider: req.Provider,
	}

	// Route based on streaming preference
	if req.Stream {
		h.generateStream(c, bioReq)
		return
	}

	h.generateOneShot(c, bioReq)
}

// generateOneShot handles non-streaming generation
func (h *BioHandler) generateOneShot(c *gin.Context, req bio.Request) {
	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		status := statusForError(err)
		logGenerationFailure(c, err, status)
		c.JSON(status, gin.H{
			"error":      bio.UserMessage(err),
			"detail":     err.Error(),
			"request_id": c.GetString("request_id"),
		})
		return
	}

	c.JSON(http.StatusOK, bioResponse(c, result))
}

// generateStream streams generation progress over SSE. Interim events come
// straight from the provider; the final "result" event carries the trimmed
// biography plus usage, mirroring the one-shot response.
func (h *BioHandler) generateStream(c *gin.Context, req bio.Request) {
	// Set SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	result, err := h.service.StreamGenerate(
		c.Request.Context(), req,
		func(event llm.StreamEvent) error {
			eventJSON, marshalErr := json.Marshal(event)
			if marshalErr != nil {
				return marshalErr
			}
			_, _ = fmt.Fprintf(c.Writer, "data: %s\n\n", eventJSON)
			c.Writer.Flush()
			return nil
		})

	if err != nil {
		logGenerationFailure(c, err, statusForError(err))
		errorEvent := llm.StreamEvent{
			Type:    "error",
			Message: bio.UserMessage(err),
		}
		eventJSON, _ := json.Marshal(errorEvent)
		_, _ = fmt.Fprintf(c.Writer, "data: %s\n\n", eventJSON)
		c.Writer.Flush()
		return
	}

	// Send final result event with the trimmed biography
	finalEvent := llm.StreamEvent{
		Type:    "result",
		Message: "Generation complete",
		Data:    bioResponse(c, result),
	}
	finalJSON, _ := json.Marshal(finalEvent)
	_, _ = fmt.Fprintf(c.Writer, "data: %s\n\n", finalJSON)
	c.Writer.Flush()

	// Send done event
	doneEvent := llm.StreamEvent{
		Type:    "done",
		Message: "Stream complete",
		Data: map[string]interface{}{
			"request_id": c.GetString("request_id"),
		},
	}
	eventJSON, _ := json.Marshal(doneEvent)
	_, _ = fmt.Fprintf(c.Writer, "data: %s\n\n", eventJSON)
	c.Writer.Flush()
}

// bioResponse builds the response body shared by the one-shot endpoint and
// the streaming result event
func bioResponse(c *gin.Context, result *bio.Result) map[string]interface{} {
	// Rendering is best effort; the raw text is the canonical result
	bioHTML, err := markdown.ToHTML(result.Biography)
	if err != nil {
		bioHTML = ""
	}

	return map[string]interface{}{
		"request_id":  c.GetString("request_id"),
		"bio":         result.Biography,
		"bio_html":    bioHTML,
		"model":       result.Model,
		"provider":    result.Provider,
		"style":       result.Style.String(),
		"duration_ms": result.Duration.Milliseconds(),
		"cost_usd":    result.CostUSD,
		"usage": map[string]interface{}{
			"input_tokens":  result.Usage.InputTokens,
			"output_tokens": result.Usage.OutputTokens,
			"total_tokens":  result.Usage.TotalTokens,
		},
	}
}

// parseStyleParam converts the request's style field, treating empty as
// "use the default"
func parseStyleParam(raw string) (prompt.Style, error) {
	if raw == "" {
		return "", nil
	}
	return prompt.ParseStyle(raw)
}

// logGenerationFailure reports server-side failures with request context.
// Client mistakes (bad style, empty info) only show up in access logs.
func logGenerationFailure(c *gin.Context, err error, status int) {
	if status < http.StatusInternalServerError {
		return
	}
	logger.Error("Biography generation failed", err, logger.WithContext(c))
}

// statusForError maps generation failures onto HTTP status codes:
// unusable requests are the caller's fault, missing credentials mean the
// service is not ready, provider failures are an upstream problem.
func statusForError(err error) int {
	var confErr *bio.ConfigurationError
	if errors.As(err, &confErr) {
		return http.StatusServiceUnavailable
	}

	var provErr *bio.ProviderError
	if errors.As(err, &provErr) {
		return http.StatusBadGateway
	}

	return http.StatusBadRequest
}
