package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/agentcore/core/pkg/core"
)

// Store is the durable, append-only side of the audit sink: one row per
// event in a single-writer sqlite table, per spec.md §6
// (`<data-dir>/audit.<store>`).
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the sqlite file at path and
// ensures the audit_events table exists.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("audit: open store: %w", err)
	}
	// The durable store is a single append-only writer; one connection
	// avoids sqlite's SQLITE_BUSY under concurrent writers from multiple
	// runs.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS audit_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			severity TEXT NOT NULL,
			message TEXT NOT NULL,
			data TEXT,
			trace_id TEXT,
			span_id TEXT,
			created_at DATETIME NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: create audit_events table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_audit_events_run ON audit_events(run_id)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: create run index: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert appends one event row. No update or delete method exists on
// Store by design: audit events are append-only (spec.md §3 invariant).
func (s *Store) Insert(ctx context.Context, e *core.AuditEvent) error {
	var data []byte
	if e.Data != nil {
		var err error
		data, err = json.Marshal(e.Data)
		if err != nil {
			return fmt.Errorf("audit: marshal event data: %w", err)
		}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (run_id, event_type, severity, message, data, trace_id, span_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.RunID, e.EventType, string(e.Severity), e.Message, string(data), e.TraceID, e.SpanID, e.Timestamp)
	if err != nil {
		return fmt.Errorf("audit: insert event: %w", err)
	}
	return nil
}

// Row is one durable audit_events record as read back.
type Row struct {
	ID        int64
	RunID     string
	EventType string
	Severity  string
	Message   string
	Data      json.RawMessage
	TraceID   string
	SpanID    string
	CreatedAt time.Time
}

// ListByRun returns every row for runID ordered by the auto-increment
// primary key, i.e. insertion order (spec.md §5 ordering guarantee).
func (s *Store) ListByRun(ctx context.Context, runID string) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, event_type, severity, message, data, trace_id, span_id, created_at
		FROM audit_events WHERE run_id = ? ORDER BY id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("audit: list events for run: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var data, traceID, spanID sql.NullString
		if err := rows.Scan(&r.ID, &r.RunID, &r.EventType, &r.Severity, &r.Message, &data, &traceID, &spanID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("audit: scan event row: %w", err)
		}
		r.Data = json.RawMessage(data.String)
		r.TraceID = traceID.String
		r.SpanID = spanID.String
		out = append(out, r)
	}
	return out, rows.Err()
}
