package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Wingseter/signal-smith-sub001/internal/logger"

	_ "modernc.org/sqlite"
)

// Recorder persists signal_events rows on its own SQLite handle, separate
// from the gorm store, so a long-running migration or lock on the signal
// table cannot stall audit writes.
type Recorder struct {
	mu sync.Mutex
	db *sql.DB
}

// NewRecorder opens (or creates) the audit database at path.
func NewRecorder(path string) (*Recorder, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("audit db path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)
	if err := ensureEventSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Recorder{db: db}, nil
}

func ensureEventSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signal_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			signal_id TEXT,
			event_type TEXT NOT NULL,
			symbol TEXT NOT NULL,
			action TEXT,
			details TEXT,
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_signal_events_signal ON signal_events(signal_id);`,
		`CREATE INDEX IF NOT EXISTS idx_signal_events_type_ts ON signal_events(event_type, created_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record appends one event. All failure modes are swallowed after a warning
// line; the caller's transition proceeds regardless.
func (r *Recorder) Record(ctx context.Context, evt Event) {
	if r == nil {
		return
	}
	ts := evt.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	details := ""
	if len(evt.Details) > 0 {
		raw, err := json.Marshal(evt.Details)
		if err != nil {
			logger.Warnf("audit: encoding details for %s failed: %v", evt.EventType, err)
		} else {
			details = string(raw)
		}
	}

	logger.With(
		"signal_id", evt.SignalID,
		"event", evt.EventType,
		"symbol", evt.Symbol,
		"action", evt.Action,
	).Info("signal event")

	r.mu.Lock()
	db := r.db
	r.mu.Unlock()
	if db == nil {
		logger.Warnf("audit: recorder closed, dropping event %s", evt.EventType)
		return
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO signal_events (signal_id, event_type, symbol, action, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		nullable(evt.SignalID), evt.EventType, strings.ToUpper(evt.Symbol),
		nullable(evt.Action), details, ts.UnixMilli(),
	)
	if err != nil {
		logger.Warnf("audit: writing event %s for %s failed: %v", evt.EventType, evt.Symbol, err)
	}
}

// ListEvents returns the most recent events for one signal, newest first.
func (r *Recorder) ListEvents(ctx context.Context, signalID string, limit int) ([]Event, error) {
	r.mu.Lock()
	db := r.db
	r.mu.Unlock()
	if db == nil {
		return nil, fmt.Errorf("audit recorder closed")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := db.QueryContext(ctx, `
		SELECT signal_id, event_type, symbol, action, details, created_at
		FROM signal_events WHERE signal_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ?`, signalID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var (
			evt        Event
			sid        sql.NullString
			action     sql.NullString
			details    sql.NullString
			createdAtM int64
		)
		if err := rows.Scan(&sid, &evt.EventType, &evt.Symbol, &action, &details, &createdAtM); err != nil {
			return nil, err
		}
		evt.SignalID = sid.String
		evt.Action = action.String
		evt.CreatedAt = time.UnixMilli(createdAtM)
		if details.String != "" {
			_ = json.Unmarshal([]byte(details.String), &evt.Details)
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

// Close releases the underlying handle.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
