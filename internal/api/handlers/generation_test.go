package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioforge-ai/bioforge-api/internal/bio"
	"github.com/bioforge-ai/bioforge-api/internal/config"
	"github.com/bioforge-ai/bioforge-api/internal/llm"
	"github.com/bioforge-ai/bioforge-api/internal/workflow"
)

// stubProvider is a Provider that returns canned responses. Session
// submissions call it from a goroutine, so the counters are locked.
type stubProvider struct {
	mu       sync.Mutex
	name     string
	response *llm.GenerationResponse
	err      error
	calls    int
}

func (p *stubProvider) Generate(_ context.Context, _ *llm.GenerationRequest) (*llm.GenerationResponse, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return p.response, nil
}

func (p *stubProvider) GenerateStream(_ context.Context, _ *llm.GenerationRequest, callback llm.StreamCallback) (*llm.GenerationResponse, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}

	for _, chunk := range []string{"A polished ", "professional biography."} {
		if err := callback(llm.StreamEvent{Type: "text_delta", Message: chunk}); err != nil {
			return nil, err
		}
	}
	if err := callback(llm.StreamEvent{Type: "completed", Message: "Generation complete"}); err != nil {
		return nil, err
	}
	return p.response, nil
}

func (p *stubProvider) Name() string {
	if p.name == "" {
		return "stub"
	}
	return p.name
}

func (p *stubProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// stubResolver hands out a fixed provider, or fails resolution
type stubResolver struct {
	provider llm.Provider
	err      error
}

func (r *stubResolver) GetProvider(_ context.Context, _, _ string) (llm.Provider, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.provider, nil
}

func healthyProvider() *stubProvider {
	return &stubProvider{
		name: "gemini",
		response: &llm.GenerationResponse{
			Text:  "  A polished professional biography.  ",
			Model: "gemini-2.5-flash",
			Usage: llm.Usage{InputTokens: 100, OutputTokens: 40, TotalTokens: 140},
		},
	}
}

func newTestService(resolver bio.ProviderResolver) *bio.Service {
	return bio.NewService(bio.ServiceConfig{Resolver: resolver})
}

// setupTestRouter creates a minimal test router with just the endpoints we need
func setupTestRouter(service *bio.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery())

	cfg := &config.Config{
		Environment:  "test",
		DefaultModel: bio.DefaultModel,
	}

	healthHandler := NewHealthHandler(cfg)
	router.GET("/health", healthHandler.HealthCheck)

	store := workflow.NewStore()
	metricsHandler := NewMetricsHandler("test", store)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	bioHandler := NewBioHandler(service)
	sessionHandler := NewSessionHandler(service, store, cfg)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/bios", bioHandler.Generate)
		v1.GET("/models", ListModels)
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

func jsonBody(t *testing.T, body interface{}) *bytes.Buffer {
	t.Helper()

	encoded, err := json.Marshal(body)
	require.NoError(t, err)
	return bytes.NewBuffer(encoded)
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	req, err := http.NewRequest("POST", path, jsonBody(t, body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err, "body was: %s", w.Body.String())
	return response
}

func TestGenerateBio(t *testing.T) {
	provider := healthyProvider()
	router := setupTestRouter(newTestService(&stubResolver{provider: provider}))

	w := postJSON(t, router, "/api/v1/bios", GenerateBioRequest{
		Info: "Ada Lovelace, mathematician, wrote the first computer program.",
	})

	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	response := decodeJSON(t, w)
	assert.Equal(t, "A polished professional biography.", response["bio"])
	assert.Contains(t, response["bio_html"], "A polished professional biography.")
	assert.Equal(t, "gemini-2.5-flash", response["model"])
	assert.Equal(t, "gemini", response["provider"])
	assert.Equal(t, "professional", response["style"])

	usage, ok := response["usage"].(map[string]interface{})
	require.True(t, ok, "response should have usage object")
	assert.Equal(t, float64(140), usage["total_tokens"])

	assert.Equal(t, 1, provider.callCount())
}

func TestGenerateBioSocialStyle(t *testing.T) {
	router := setupTestRouter(newTestService(&stubResolver{provider: healthyProvider()}))

	w := postJSON(t, router, "/api/v1/bios", GenerateBioRequest{
		Info:  "Ada Lovelace, mathematician.",
		Style: "social",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "social", decodeJSON(t, w)["style"])
}

func TestGenerateBioInvalidStyle(t *testing.T) {
	provider := healthyProvider()
	router := setupTestRouter(newTestService(&stubResolver{provider: provider}))

	w := postJSON(t, router, "/api/v1/bios", GenerateBioRequest{
		Info:  "Ada Lovelace.",
		Style: "poetic",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeJSON(t, w)["error"], "poetic")
	assert.Equal(t, 0, provider.callCount())
}

func TestGenerateBioInvalidModel(t *testing.T) {
	router := setupTestRouter(newTestService(&stubResolver{provider: healthyProvider()}))

	w := postJSON(t, router, "/api/v1/bios", GenerateBioRequest{
		Info:  "Ada Lovelace.",
		Model: "gpt-2",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeJSON(t, w)["detail"], "gpt-2")
}

func TestGenerateBioEmptyInfo(t *testing.T) {
	provider := healthyProvider()
	router := setupTestRouter(newTestService(&stubResolver{provider: provider}))

	w := postJSON(t, router, "/api/v1/bios", GenerateBioRequest{Info: "   "})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, provider.callCount())
}

func TestGenerateBioNotConfigured(t *testing.T) {
	resolver := &stubResolver{
		err: fmt.Errorf("gemini: %w (set GEMINI_API_KEY)", llm.ErrNotConfigured),
	}
	router := setupTestRouter(newTestService(resolver))

	w := postJSON(t, router, "/api/v1/bios", GenerateBioRequest{Info: "Ada Lovelace."})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	response := decodeJSON(t, w)
	assert.Contains(t, response["error"], "not configured")
	assert.Contains(t, response["detail"], "GEMINI_API_KEY")
}

func TestGenerateBioProviderFailure(t *testing.T) {
	provider := &stubProvider{
		name: "openai",
		err:  fmt.Errorf("rate limit exceeded"),
	}
	router := setupTestRouter(newTestService(&stubResolver{provider: provider}))

	w := postJSON(t, router, "/api/v1/bios", GenerateBioRequest{Info: "Ada Lovelace."})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, decodeJSON(t, w)["error"], "rate limit exceeded")
}

func TestGenerateBioStreaming(t *testing.T) {
	router := setupTestRouter(newTestService(&stubResolver{provider: healthyProvider()}))

	w := postJSON(t, router, "/api/v1/bios", GenerateBioRequest{
		Info:   "Ada Lovelace, mathematician.",
		Stream: true,
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Contains(t, body, `"type":"text_delta"`)
	assert.Contains(t, body, `"type":"result"`)
	assert.Contains(t, body, `"type":"done"`)

	// The result event carries the trimmed biography
	assert.Contains(t, body, `"bio":"A polished professional biography."`)
}

func TestGenerateBioStreamingError(t *testing.T) {
	provider := &stubProvider{name: "openai", err: fmt.Errorf("connection reset")}
	router := setupTestRouter(newTestService(&stubResolver{provider: provider}))

	w := postJSON(t, router, "/api/v1/bios", GenerateBioRequest{
		Info:   "Ada Lovelace.",
		Stream: true,
	})

	body := w.Body.String()
	assert.Contains(t, body, `"type":"error"`)
	assert.Contains(t, body, "connection reset")
	assert.NotContains(t, body, `"type":"result"`)
}

func TestListModels(t *testing.T) {
	router := setupTestRouter(newTestService(&stubResolver{provider: healthyProvider()}))

	req, err := http.NewRequest("GET", "/api/v1/models", nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	response := decodeJSON(t, w)
	assert.Equal(t, bio.DefaultModel, response["default_model"])

	models, ok := response["models"].([]interface{})
	require.True(t, ok, "response should have 'models' array")
	require.Len(t, models, len(bio.AllowedModels))

	defaults := 0
	for _, modelInterface := range models {
		model, ok := modelInterface.(map[string]interface{})
		require.True(t, ok)

		name, _ := model["name"].(string)
		provider, _ := model["provider"].(string)
		if strings.HasPrefix(name, "gpt-") {
			assert.Equal(t, "openai", provider)
		} else {
			assert.Equal(t, "gemini", provider)
		}
		if isDefault, _ := model["default"].(bool); isDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults, "exactly one model should be the default")

	styles, ok := response["styles"].([]interface{})
	require.True(t, ok, "response should have 'styles' array")
	assert.ElementsMatch(t, []interface{}{"professional", "social"}, styles)
}
