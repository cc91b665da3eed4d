package trace

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Record is one traced HTTP request.
type Record struct {
	ID         int64     `json:"id"`
	RequestID  string    `json:"request_id"`
	SessionID  string    `json:"session_id"`
	Timestamp  time.Time `json:"timestamp"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Status     int       `json:"status"`
	DurationMS int64     `json:"duration_ms"`
}

// Store is the trace storage backend.
type Store interface {
	Log(rec Record) error
	Recent(limit int) ([]Record, error)
	BySession(sessionID string) ([]Record, error)
	Cleanup(maxAge time.Duration) error
	Close() error
	Enabled() bool
}

// NoOpStore is used when tracing is disabled.
type NoOpStore struct{}

func (NoOpStore) Log(Record) error                    { return nil }
func (NoOpStore) Recent(int) ([]Record, error)        { return nil, nil }
func (NoOpStore) BySession(string) ([]Record, error)  { return nil, nil }
func (NoOpStore) Cleanup(time.Duration) error         { return nil }
func (NoOpStore) Close() error                        { return nil }
func (NoOpStore) Enabled() bool                       { return false }

// SQLiteStore persists trace records to SQLite, in-memory or on disk.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens the database and creates the schema.
func NewSQLiteStore(cfg *Config) (*SQLiteStore, error) {
	var dbPath string
	switch cfg.Storage {
	case "memory":
		dbPath = ":memory:"
	case "file":
		dbPath = cfg.Path
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported trace storage type: %s", cfg.Storage)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace database: %w", err)
	}

	s := &SQLiteStore{db: db, path: dbPath}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create trace tables: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id TEXT NOT NULL,
		session_id TEXT,
		timestamp DATETIME NOT NULL,
		method TEXT NOT NULL,
		path TEXT NOT NULL,
		status INTEGER NOT NULL,
		duration_ms INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_requests_session ON requests(session_id);
	CREATE INDEX IF NOT EXISTS idx_requests_timestamp ON requests(timestamp);
	`
	_, err := s.db.Exec(query)
	return err
}

func (s *SQLiteStore) Log(rec Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	_, err := s.db.Exec(`
	INSERT INTO requests (request_id, session_id, timestamp, method, path, status, duration_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RequestID, rec.SessionID, rec.Timestamp, rec.Method, rec.Path, rec.Status, rec.DurationMS)
	return err
}

func (s *SQLiteStore) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(`
	SELECT id, request_id, session_id, timestamp, method, path, status, duration_ms
	FROM requests ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

func (s *SQLiteStore) BySession(sessionID string) ([]Record, error) {
	rows, err := s.db.Query(`
	SELECT id, request_id, session_id, timestamp, method, path, status, duration_ms
	FROM requests WHERE session_id = ? ORDER BY timestamp ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Trace: failed to close rows: %v", err)
		}
	}()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.RequestID, &rec.SessionID, &rec.Timestamp,
			&rec.Method, &rec.Path, &rec.Status, &rec.DurationMS); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) Cleanup(maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)
	result, err := s.db.Exec("DELETE FROM requests WHERE timestamp < ?", cutoff)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n > 0 {
		log.Printf("Trace: cleaned up %d old request records", n)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Enabled() bool {
	return true
}

// Start initializes tracing from the environment, returning a no-op store
// when disabled. On a storage failure the caller gets a usable no-op store
// and the loaded config alongside the error, so degrading to no tracing
// never needs nil checks. When retention is configured, old records are
// swept hourly.
func Start() (Store, *Config, error) {
	cfg := LoadConfig()
	if !cfg.Enabled {
		return NoOpStore{}, cfg, nil
	}

	log.Printf("Trace: enabled (storage: %s)", cfg.Storage)
	store, err := NewSQLiteStore(cfg)
	if err != nil {
		return NoOpStore{}, cfg, err
	}

	if cfg.RetentionH > 0 {
		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for range ticker.C {
				if err := store.Cleanup(time.Duration(cfg.RetentionH) * time.Hour); err != nil {
					log.Printf("Trace: cleanup error: %v", err)
				}
			}
		}()
	}
	return store, cfg, nil
}
