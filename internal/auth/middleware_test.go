package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator struct {
	claims *Claims
	err    error
}

func (s *stubValidator) Validate(ctx context.Context, token string) (*Claims, error) {
	return s.claims, s.err
}

func TestMiddleware(t *testing.T) {
	makeHandler := func(v Validator) (http.Handler, *Claims) {
		var seen Claims
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, ok := ClaimsFromContext(r.Context()); ok {
				seen = *claims
			}
			w.WriteHeader(http.StatusOK)
		})
		return Middleware(MiddlewareConfig{Validator: v})(next), &seen
	}

	t.Run("rejects requests without Authorization header", func(t *testing.T) {
		handler, _ := makeHandler(&stubValidator{})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("POST", "/mcp", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, `Bearer error="missing_token"`, rec.Header().Get("WWW-Authenticate"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "unauthorized", body["error"])
		assert.Equal(t, "Missing Authorization header", body["message"])
	})

	t.Run("rejects non-bearer Authorization header", func(t *testing.T) {
		handler, _ := makeHandler(&stubValidator{})
		req := httptest.NewRequest("POST", "/mcp", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, `Bearer error="invalid_token"`, rec.Header().Get("WWW-Authenticate"))
	})

	t.Run("rejects empty bearer token", func(t *testing.T) {
		handler, _ := makeHandler(&stubValidator{})
		req := httptest.NewRequest("POST", "/mcp", nil)
		req.Header.Set("Authorization", "Bearer ")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var body map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "Empty token", body["message"])
	})

	t.Run("rejects tokens the validator refuses", func(t *testing.T) {
		handler, _ := makeHandler(&stubValidator{err: errors.New("token is expired")})
		req := httptest.NewRequest("POST", "/mcp", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, `Bearer error="invalid_token"`, rec.Header().Get("WWW-Authenticate"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "token is expired", body["message"])
	})

	t.Run("attaches claims for valid tokens", func(t *testing.T) {
		want := &Claims{Subject: "user-1", Scopes: []string{"read_airquality"}}
		handler, seen := makeHandler(&stubValidator{claims: want})
		req := httptest.NewRequest("POST", "/mcp", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-1", seen.Subject)
		assert.Equal(t, []string{"read_airquality"}, seen.Scopes)
	})

	t.Run("exempts health checks", func(t *testing.T) {
		handler, _ := makeHandler(&stubValidator{err: errors.New("should not be called")})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("exempts CORS preflight requests", func(t *testing.T) {
		handler, _ := makeHandler(&stubValidator{err: errors.New("should not be called")})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("OPTIONS", "/mcp", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("honors extra exempt paths", func(t *testing.T) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
		handler := Middleware(MiddlewareConfig{
			Validator:   &stubValidator{err: errors.New("should not be called")},
			ExemptPaths: []string{"/metrics"},
		})(next)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestPropagateClaims(t *testing.T) {
	t.Run("copies claims from request to target context", func(t *testing.T) {
		claims := &Claims{Subject: "user-1"}
		req := httptest.NewRequest("POST", "/mcp", nil)
		req = req.WithContext(WithClaims(req.Context(), claims))

		ctx := PropagateClaims(context.Background(), req)
		got, ok := ClaimsFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, "user-1", got.Subject)
	})

	t.Run("leaves context untouched when request has no claims", func(t *testing.T) {
		ctx := PropagateClaims(context.Background(), httptest.NewRequest("POST", "/mcp", nil))
		_, ok := ClaimsFromContext(ctx)
		assert.False(t, ok)
	})
}
