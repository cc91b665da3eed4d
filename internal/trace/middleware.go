package trace

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Middleware records one Record per request: method, path, status, duration,
// and the MCP session id when one is present in either direction.
func Middleware(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !store.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := &recorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			sessionID := r.Header.Get("Mcp-Session-Id")
			if sessionID == "" {
				sessionID = rec.Header().Get("Mcp-Session-Id")
			}
			if err := store.Log(Record{
				RequestID:  uuid.NewString(),
				SessionID:  sessionID,
				Timestamp:  start,
				Method:     r.Method,
				Path:       r.URL.Path,
				Status:     rec.status(),
				DurationMS: time.Since(start).Milliseconds(),
			}); err != nil {
				log.Printf("Trace: failed to log request: %v", err)
			}
		})
	}
}

type recorder struct {
	http.ResponseWriter
	code int
}

func (r *recorder) WriteHeader(code int) {
	if r.code == 0 {
		r.code = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(data []byte) (int, error) {
	if r.code == 0 {
		r.code = http.StatusOK
	}
	return r.ResponseWriter.Write(data)
}

func (r *recorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *recorder) status() int {
	if r.code == 0 {
		return http.StatusOK
	}
	return r.code
}
