// Package middleware holds the plain HTTP middleware shared by the HTTP
// transports.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig defines the CORS configuration
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           int
}

// DefaultCORSConfig returns a permissive configuration suitable for
// browser-based MCP clients. The session header must be exposed so
// clients can read the id the server assigns.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Accept", "Content-Type", "Authorization", "Mcp-Session-Id", "Mcp-Protocol-Version", "Last-Event-ID"},
		ExposeHeaders: []string{"Mcp-Session-Id", "Mcp-Protocol-Version"},
		MaxAge:        86400,
	}
}

func (c CORSConfig) allowsOrigin(origin string) bool {
	for _, allowed := range c.AllowOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func (c CORSConfig) writePreflight(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Methods", strings.Join(c.AllowMethods, ", "))
	h.Set("Access-Control-Allow-Headers", strings.Join(c.AllowHeaders, ", "))
	if c.MaxAge > 0 {
		h.Set("Access-Control-Max-Age", strconv.Itoa(c.MaxAge))
	}
	w.WriteHeader(http.StatusNoContent)
}

// CORS returns a middleware applying the configuration to every request
// except health checks, which stay header-free for load balancer probes.
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			if origin := r.Header.Get("Origin"); origin != "" && config.allowsOrigin(origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}
			if config.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				config.writePreflight(w)
				return
			}

			if len(config.ExposeHeaders) > 0 {
				w.Header().Set("Access-Control-Expose-Headers", strings.Join(config.ExposeHeaders, ", "))
			}
			next.ServeHTTP(w, r)
		})
	}
}
