package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func corsRouter(allowedOrigins string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS(allowedOrigins))
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return router
}

func TestCORSAllowAll(t *testing.T) {
	router := corsRouter("*")

	req, _ := http.NewRequest("GET", "/ping", nil)
	req.Header.Set("Origin", "https://example.com")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSAllowlist(t *testing.T) {
	router := corsRouter("https://bioforge.ai, https://app.bioforge.ai")

	req, _ := http.NewRequest("GET", "/ping", nil)
	req.Header.Set("Origin", "https://app.bioforge.ai")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "https://app.bioforge.ai", w.Header().Get("Access-Control-Allow-Origin"))

	// Unlisted origins get no CORS headers
	req, _ = http.NewRequest("GET", "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	router := corsRouter("*")

	req, _ := http.NewRequest("OPTIONS", "/ping", nil)
	req.Header.Set("Origin", "https://example.com")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
}

func gatewayRouter(auth gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(auth)
	router.GET("/whoami", func(c *gin.Context) {
		userID, ok := GetUserIDFromGateway(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "authenticated": ok})
	})
	return router
}

func TestGatewayAuthRequiresHeader(t *testing.T) {
	router := gatewayRouter(GatewayAuth())

	req, _ := http.NewRequest("GET", "/whoami", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "X-User-ID")
}

func TestGatewayAuthTrustsHeaders(t *testing.T) {
	router := gatewayRouter(GatewayAuth())

	req, _ := http.NewRequest("GET", "/whoami", nil)
	req.Header.Set("X-User-ID", "user-42")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"user-42"`)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)
}

func TestOptionalGatewayAuthAllowsAnonymous(t *testing.T) {
	router := gatewayRouter(OptionalGatewayAuth())

	req, _ := http.NewRequest("GET", "/whoami", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
}

func TestNoAuthSetsAnonymousUser(t *testing.T) {
	router := gatewayRouter(NoAuth())

	req, _ := http.NewRequest("GET", "/whoami", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"anonymous"`)
}
