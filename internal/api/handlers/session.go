package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bioforge-ai/bioforge-api/internal/api/middleware"
	"github.com/bioforge-ai/bioforge-api/internal/bio"
	"github.com/bioforge-ai/bioforge-api/internal/config"
	"github.com/bioforge-ai/bioforge-api/internal/markdown"
	"github.com/bioforge-ai/bioforge-api/internal/metrics"
	"github.com/bioforge-ai/bioforge-api/internal/workflow"
)

const sseKeepAliveInterval = 25 * time.Second

// SessionHandler manages long-lived workflow sessions. Each session is one
// biography workflow a client drives through submissions, style changes and
// copy actions, observing state over the events stream.
type SessionHandler struct {
	service *bio.Service
	store   *workflow.Store
	clip    workflow.Clipboard
	metrics *metrics.SentryMetrics
}

func NewSessionHandler(service *bio.Service, store *workflow.Store, cfg *config.Config) *SessionHandler {
	var clip workflow.Clipboard = workflow.NopClipboard{}
	if cfg.ClipboardEnabled {
		clip = workflow.SystemClipboard{}
	}

	return &SessionHandler{
		service: service,
		store:   store,
		clip:    clip,
		metrics: metrics.NewSentryMetrics(),
	}
}

type CreateSessionRequest struct {
	Style    string `json:"style"`    // initial style, professional when empty
	Model    string `json:"model"`    // default model for submissions
	Provider string `json:"provider"` // default provider override
}

type SubmitBioRequest struct {
	Info     string `json:"info"`
	Style    string `json:"style"` // optional per-submission override
	Model    string `json:"model"`
	Provider string `json:"provider"`
}

type SetStyleRequest struct {
	Style string `json:"style"`
}

// Create opens a new workflow session
func (h *SessionHandler) Create(c *gin.Context) {
	var req CreateSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	style, err := parseStyleParam(req.Style)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Model != "" && !bio.AllowedModels[req.Model] {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidModelMessage(req.Model)})
		return
	}

	sess := workflow.NewSession(workflow.SessionConfig{
		Generator: h.service,
		Clipboard: h.clip,
		Style:     style,
		Model:     req.Model,
		Provider:  req.Provider,
	})

	createdBy, _ := middleware.GetUserIDFromGateway(c)
	stored := h.store.Add(sess, createdBy)
	h.metrics.RecordSessionEvent("session.created", h.store.Len())

	c.JSON(http.StatusCreated, gin.H{
		"session_id": stored.ID,
		"created_at": stored.CreatedAt.Format(time.RFC3339),
		"state":      stateJSON(stored.Snapshot()),
	})
}

// Get returns a session's current state
func (h *SessionHandler) Get(c *gin.Context) {
	stored, ok := h.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":  stored.ID,
		"created_at":  stored.CreatedAt.Format(time.RFC3339),
		"state":       stateJSON(stored.Snapshot()),
		"submittable": stored.Submittable(),
	})
}

// Submit starts a biography generation on the session. The call returns
// immediately; progress arrives over the events stream.
func (h *SessionHandler) Submit(c *gin.Context) {
	stored, ok := h.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	var req SubmitBioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	style, err := parseStyleParam(req.Style)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accepted := stored.Submit(c.Request.Context(), workflow.Submission{
		Info:     req.Info,
		Style:    style,
		Model:    req.Model,
		Provider: req.Provider,
	})
	if !accepted {
		// The blank-input guard: nothing was submitted and no error state
		// was entered
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "No information provided",
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"session_id": stored.ID,
		"state":      stateJSON(stored.Snapshot()),
	})
}

// SetStyle changes the style used by the session's next submission
func (h *SessionHandler) SetStyle(c *gin.Context) {
	stored, ok := h.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	var req SetStyleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	style, err := parseStyleParam(req.Style)
	if err != nil || style == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid style. Allowed: professional, social"})
		return
	}

	if err := stored.SetStyle(style); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": stored.ID,
		"state":      stateJSON(stored.Snapshot()),
	})
}

// Copy copies the session's biography and raises the acknowledgment flag
// for the acknowledgment window
func (h *SessionHandler) Copy(c *gin.Context) {
	stored, ok := h.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	if err := stored.Copy(); err != nil {
		if errors.Is(err, workflow.ErrNothingToCopy) {
			c.JSON(http.StatusConflict, gin.H{"error": "No biography to copy"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": stored.ID,
		"state":      stateJSON(stored.Snapshot()),
	})
}

// Events streams the session's state changes over SSE. The first event is
// the current state; each transition follows as its own event.
func (h *SessionHandler) Events(c *gin.Context) {
	stored, ok := h.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	updates := make(chan workflow.State, 16)
	cancel := stored.Subscribe(func(st workflow.State) {
		select {
		case updates <- st:
		default:
			// Drop when the client cannot keep up; the next update
			// carries the full state anyway
		}
	})
	defer cancel()

	send := func(st workflow.State) {
		payload, err := json.Marshal(stateJSON(st))
		if err != nil {
			return
		}
		_, _ = fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
		c.Writer.Flush()
	}

	// Current state first so the client renders immediately
	send(stored.Snapshot())

	keepAlive := time.NewTicker(sseKeepAliveInterval)
	defer keepAlive.Stop()

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			return
		case <-stored.Done():
			return
		case st := <-updates:
			send(st)
		case <-keepAlive.C:
			_, _ = fmt.Fprint(c.Writer, ": keep-alive\n\n")
			c.Writer.Flush()
		}
	}
}

// Delete tears the session down
func (h *SessionHandler) Delete(c *gin.Context) {
	if !h.store.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	h.metrics.RecordSessionEvent("session.deleted", h.store.Len())
	c.Status(http.StatusNoContent)
}

// stateJSON converts a workflow state into its wire form. The rendered
// variant of the biography rides along so clients need no Markdown logic.
func stateJSON(st workflow.State) gin.H {
	bioHTML := ""
	if st.Biography != "" {
		if html, err := markdown.ToHTML(st.Biography); err == nil {
			bioHTML = html
		}
	}

	return gin.H{
		"phase":             st.Phase.String(),
		"bio":               st.Biography,
		"bio_html":          bioHTML,
		"error_message":     st.ErrorMessage,
		"copy_acknowledged": st.CopyAcknowledged,
		"style":             st.Style.String(),
	}
}

func invalidModelMessage(model string) string {
	return fmt.Sprintf("Invalid model %q. Allowed: %s", model, strings.Join(bio.AllowedModelNames(), ", "))
}
