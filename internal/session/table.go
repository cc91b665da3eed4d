// Package session tracks the opaque session identifiers the streamable HTTP
// transport issues, for operational visibility. The transport owns session
// lifecycle; this table only observes it.
package session

import (
	"net/http"
	"sync"
	"time"
)

const headerName = "Mcp-Session-Id"

// Handle records one observed session.
type Handle struct {
	ID        string
	CreatedAt time.Time
	LastSeen  time.Time
}

// Table is a concurrency-safe session table with TTL-based expiry sweeping.
type Table struct {
	mu      sync.Mutex
	ttl     time.Duration
	handles map[string]*Handle
	done    chan struct{}
}

// NewTable creates a table sweeping out sessions idle longer than ttl.
func NewTable(ttl time.Duration) *Table {
	t := &Table{
		ttl:     ttl,
		handles: make(map[string]*Handle),
		done:    make(chan struct{}),
	}
	go t.sweepLoop()
	return t
}

// Touch records activity on a session, creating the handle on first sight.
func (t *Table) Touch(id string) {
	if id == "" {
		return
	}
	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	if h, ok := t.handles[id]; ok {
		h.LastSeen = now
		return
	}
	t.handles[id] = &Handle{ID: id, CreatedAt: now, LastSeen: now}
}

// Get returns a copy of the handle for id.
func (t *Table) Get(id string) (Handle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if h, ok := t.handles[id]; ok {
		return *h, true
	}
	return Handle{}, false
}

// Active returns the number of tracked sessions.
func (t *Table) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.handles)
}

// Sweep removes sessions idle past the TTL as of now, returning the count.
func (t *Table) Sweep(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := 0
	for id, h := range t.handles {
		if now.Sub(h.LastSeen) > t.ttl {
			delete(t.handles, id)
			removed++
		}
	}
	return removed
}

// Stop terminates the sweep loop.
func (t *Table) Stop() {
	close(t.done)
}

func (t *Table) sweepLoop() {
	interval := t.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-t.done:
			return
		case now := <-ticker.C:
			t.Sweep(now)
		}
	}
}

// Observe is middleware recording session identifiers as they flow through
// the transport: inbound on the request header, outbound on the response
// header the transport sets during initialize.
func Observe(table *Table) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := r.Header.Get(headerName); id != "" {
				table.Touch(id)
			}
			next.ServeHTTP(&observer{ResponseWriter: w, table: table}, r)
		})
	}
}

type observer struct {
	http.ResponseWriter
	table *Table
	seen  bool
}

func (o *observer) WriteHeader(code int) {
	o.record()
	o.ResponseWriter.WriteHeader(code)
}

func (o *observer) Write(data []byte) (int, error) {
	o.record()
	return o.ResponseWriter.Write(data)
}

// Flush keeps the transport's SSE streaming intact through the wrapper.
func (o *observer) Flush() {
	if f, ok := o.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (o *observer) record() {
	if o.seen {
		return
	}
	o.seen = true
	if id := o.Header().Get(headerName); id != "" {
		o.table.Touch(id)
	}
}
