package auth

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
)

// MiddlewareConfig configures the request authentication middleware.
type MiddlewareConfig struct {
	Validator Validator
	// ExemptPaths bypass authentication entirely. Defaults to /health.
	ExemptPaths []string
}

// Middleware validates the bearer token on every inbound request before the
// MCP transport sees it. This is the only place allowed to reject with a
// transport-level 401: once the session stream opens, the status code is
// committed and later failures must go in-band. Health checks and CORS
// preflights bypass the check unconditionally.
func Middleware(cfg MiddlewareConfig) func(http.Handler) http.Handler {
	exempt := map[string]bool{"/health": true}
	for _, p := range cfg.ExemptPaths {
		exempt[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || exempt[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				log.Printf("Auth: missing Authorization header for %s %s", r.Method, r.URL.Path)
				unauthorized(w, `Bearer error="missing_token"`, "Missing Authorization header")
				return
			}
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, `Bearer error="invalid_token"`, "Invalid Authorization header format. Expected 'Bearer <token>'")
				return
			}
			token := strings.TrimPrefix(header, "Bearer ")
			if token == "" {
				unauthorized(w, `Bearer error="invalid_token"`, "Empty token")
				return
			}

			claims, err := cfg.Validator.Validate(r.Context(), token)
			if err != nil {
				log.Printf("Auth: token validation failed: %v", err)
				unauthorized(w, `Bearer error="invalid_token"`, err.Error())
				return
			}

			ctx := WithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, challenge, message string) {
	w.Header().Set("WWW-Authenticate", challenge)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": message,
	})
}

// PropagateClaims copies validated claims from the HTTP request context into
// the context the MCP server hands to tool handlers. Wired into the
// streamable HTTP transport via server.WithHTTPContextFunc.
func PropagateClaims(ctx context.Context, r *http.Request) context.Context {
	if claims, ok := ClaimsFromContext(r.Context()); ok {
		return WithClaims(ctx, claims)
	}
	return ctx
}
