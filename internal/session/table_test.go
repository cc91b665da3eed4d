package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	t.Run("tracks sessions from first touch", func(t *testing.T) {
		table := NewTable(time.Minute)
		defer table.Stop()

		table.Touch("sess-1")
		table.Touch("sess-2")
		assert.Equal(t, 2, table.Active())

		h, ok := table.Get("sess-1")
		require.True(t, ok)
		assert.Equal(t, "sess-1", h.ID)
		assert.False(t, h.CreatedAt.IsZero())
	})

	t.Run("ignores empty ids", func(t *testing.T) {
		table := NewTable(time.Minute)
		defer table.Stop()

		table.Touch("")
		assert.Equal(t, 0, table.Active())
	})

	t.Run("touch updates LastSeen without resetting CreatedAt", func(t *testing.T) {
		table := NewTable(time.Minute)
		defer table.Stop()

		table.Touch("sess-1")
		first, _ := table.Get("sess-1")

		time.Sleep(5 * time.Millisecond)
		table.Touch("sess-1")
		second, _ := table.Get("sess-1")

		assert.Equal(t, first.CreatedAt, second.CreatedAt)
		assert.True(t, second.LastSeen.After(first.LastSeen))
		assert.Equal(t, 1, table.Active())
	})

	t.Run("sweep removes only idle sessions", func(t *testing.T) {
		table := NewTable(time.Minute)
		defer table.Stop()

		table.Touch("stale")
		table.Touch("fresh")

		// Pretend two minutes passed for the stale session only.
		removed := table.Sweep(time.Now().Add(2 * time.Minute))
		assert.Equal(t, 2, removed, "both sessions are idle past the TTL at that point")

		table.Touch("fresh")
		removed = table.Sweep(time.Now())
		assert.Equal(t, 0, removed)
		assert.Equal(t, 1, table.Active())
	})
}

func TestObserve(t *testing.T) {
	t.Run("records the inbound session header", func(t *testing.T) {
		table := NewTable(time.Minute)
		defer table.Stop()

		handler := Observe(table)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("POST", "/mcp", nil)
		req.Header.Set("Mcp-Session-Id", "inbound-1")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		_, ok := table.Get("inbound-1")
		assert.True(t, ok)
	})

	t.Run("records the session id the transport assigns on the response", func(t *testing.T) {
		table := NewTable(time.Minute)
		defer table.Stop()

		handler := Observe(table)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Mcp-Session-Id", "assigned-1")
			w.WriteHeader(http.StatusOK)
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/mcp", nil))

		_, ok := table.Get("assigned-1")
		assert.True(t, ok, "initialize responses carry a fresh session id")
	})

	t.Run("leaves the table untouched for sessionless requests", func(t *testing.T) {
		table := NewTable(time.Minute)
		defer table.Stop()

		handler := Observe(table)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))
		assert.Equal(t, 0, table.Active())
	})
}
