package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func corsHandler(config CORSConfig) http.Handler {
	return CORS(config)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCORS(t *testing.T) {
	t.Run("wildcard config echoes any origin", func(t *testing.T) {
		handler := corsHandler(DefaultCORSConfig())

		req := httptest.NewRequest("POST", "/mcp", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("exposes the session header to browsers", func(t *testing.T) {
		handler := corsHandler(DefaultCORSConfig())

		req := httptest.NewRequest("POST", "/mcp", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Mcp-Session-Id")
	})

	t.Run("preflight advertises methods, headers and max age", func(t *testing.T) {
		handler := corsHandler(DefaultCORSConfig())

		req := httptest.NewRequest("OPTIONS", "/mcp", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Mcp-Session-Id")
		assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("disallowed origins get no CORS headers", func(t *testing.T) {
		config := DefaultCORSConfig()
		config.AllowOrigins = []string{"https://allowed.example.com"}
		handler := corsHandler(config)

		req := httptest.NewRequest("POST", "/mcp", nil)
		req.Header.Set("Origin", "https://other.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("origin matching is exact apart from the wildcard", func(t *testing.T) {
		config := CORSConfig{AllowOrigins: []string{"https://a.example.com", "https://b.example.com"}}
		assert.True(t, config.allowsOrigin("https://b.example.com"))
		assert.False(t, config.allowsOrigin("https://b.example.com.evil.com"))
		assert.False(t, config.allowsOrigin("https://sub.a.example.com"))

		wildcard := CORSConfig{AllowOrigins: []string{"*"}}
		assert.True(t, wildcard.allowsOrigin("https://anything.example.com"))
	})

	t.Run("health checks skip CORS entirely", func(t *testing.T) {
		handler := corsHandler(DefaultCORSConfig())

		req := httptest.NewRequest("GET", "/health", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
