package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioforge-ai/bioforge-api/internal/config"
)

func getPath(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()

	req, err := http.NewRequest("GET", path, nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router := setupTestRouter(newTestService(&stubResolver{provider: healthyProvider()}))

	w := getPath(t, router, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	response := decodeJSON(t, w)
	assert.Equal(t, "healthy", response["status"])
	assert.NotEmpty(t, response["default_model"])

	providers, ok := response["providers"].(map[string]interface{})
	require.True(t, ok, "response should have providers object")
	assert.Contains(t, providers, "gemini")
	assert.Contains(t, providers, "openai")
}

func TestHealthCheckReportsConfiguredProviders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handler := NewHealthHandler(&config.Config{
		DefaultModel: "gemini-2.5-flash",
		GeminiAPIKey: "gm-test",
	})
	router.GET("/health", handler.HealthCheck)

	w := getPath(t, router, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	providers := decodeJSON(t, w)["providers"].(map[string]interface{})
	gemini := providers["gemini"].(map[string]interface{})
	openai := providers["openai"].(map[string]interface{})
	assert.Equal(t, true, gemini["configured"])
	assert.Equal(t, false, openai["configured"])
}

func TestGetMetrics(t *testing.T) {
	router := setupTestRouter(newTestService(&stubResolver{provider: healthyProvider()}))

	w := getPath(t, router, "/api/metrics")
	require.Equal(t, http.StatusOK, w.Code)

	response := decodeJSON(t, w)
	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, "test", response["version"])
	assert.NotEmpty(t, response["uptime"])

	system, ok := response["system"].(map[string]interface{})
	require.True(t, ok, "response should have system metrics")
	assert.NotEmpty(t, system["go_version"])

	api, ok := response["api"].(map[string]interface{})
	require.True(t, ok, "response should have api metrics")
	sessions, ok := api["sessions"].(map[string]interface{})
	require.True(t, ok, "api metrics should count sessions")
	assert.Equal(t, float64(0), sessions["active"])
}

func TestMetricsCountsActiveSessions(t *testing.T) {
	router := setupTestRouter(newTestService(&stubResolver{provider: healthyProvider()}))
	createSession(t, router, nil)
	createSession(t, router, nil)

	w := getPath(t, router, "/api/metrics")
	require.Equal(t, http.StatusOK, w.Code)

	api := decodeJSON(t, w)["api"].(map[string]interface{})
	sessions := api["sessions"].(map[string]interface{})
	assert.Equal(t, float64(2), sessions["active"])
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "1.50s", formatUptime(1500*time.Millisecond))
	assert.Equal(t, "2m30.00s", formatUptime(150*time.Second))
	assert.Equal(t, "1h5m0.00s", formatUptime(time.Hour+5*time.Minute))
}
