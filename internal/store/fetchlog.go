// Package store provides a SQLite-backed log of fetch cycle outcomes.
//
// The log records what happened to each request (resource, outcome, reason, timing) and
// never stores response payloads.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"k8s.io/klog/v2"
	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/theirongolddev/ccoach/internal/fetch"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrClosed is returned by Record once the log has been closed.
var ErrClosed = errors.New("store: fetch log closed")

// FetchLog appends fetch cycle outcomes to SQLite.
type FetchLog struct {
	db  *sql.DB
	now func() time.Time

	// mu orders writes against Close.
	mu     sync.RWMutex
	closed bool
}

// Entry is one recorded cycle.
type Entry struct {
	ID         int64
	Resource   string
	Cycle      uint64
	Outcome    string
	Reason     string
	StartedAt  time.Time
	Duration   time.Duration
	RecordedAt time.Time
}

// Open opens or creates the log database at the given path.
func Open(dbPath string) (*FetchLog, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening fetch log db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &FetchLog{db: db, now: time.Now}, nil
}

// Close closes the log database. Later Record calls return ErrClosed.
func (l *FetchLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.db.Close()
}

// Record appends one settlement.
func (l *FetchLog) Record(s fetch.Settlement) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrClosed
	}
	_, err := l.db.Exec(`INSERT INTO fetch_cycles
		(resource, cycle, outcome, reason, started_at, duration_ms, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.Resource, int64(s.Cycle), string(s.Outcome), s.Reason,
		s.Started.UTC().Format(timeLayout), s.Duration.Milliseconds(),
		l.now().UTC().Format(timeLayout),
	)
	return err
}

// CycleSettled implements fetch.Observer. Write failures are logged, not returned.
// Cycles that settle after Close are dropped.
func (l *FetchLog) CycleSettled(s fetch.Settlement) {
	err := l.Record(s)
	switch {
	case err == nil:
	case errors.Is(err, ErrClosed):
		klog.V(2).InfoS("Fetch log closed, dropping cycle", "resource", s.Resource, "cycle", s.Cycle, "outcome", s.Outcome)
	default:
		klog.ErrorS(err, "Recording fetch cycle", "resource", s.Resource, "cycle", s.Cycle)
	}
}

// Recent returns up to limit entries, newest first. An empty resource matches all.
func (l *FetchLog) Recent(limit int, resource string) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, resource, cycle, outcome, reason, started_at, duration_ms, recorded_at
		FROM fetch_cycles`
	args := []any{}
	if resource != "" {
		query += " WHERE resource = ?"
		args = append(args, resource)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var cycle, durationMs int64
		var reason sql.NullString
		var startedStr, recordedStr string

		if err := rows.Scan(&e.ID, &e.Resource, &cycle, &e.Outcome, &reason,
			&startedStr, &durationMs, &recordedStr); err != nil {
			return nil, err
		}

		e.Cycle = uint64(cycle)
		e.Duration = time.Duration(durationMs) * time.Millisecond
		if reason.Valid {
			e.Reason = reason.String
		}
		e.StartedAt, _ = time.Parse(timeLayout, startedStr)
		e.RecordedAt, _ = time.Parse(timeLayout, recordedStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// OutcomeCounts returns counts per resource and outcome since the given time.
func (l *FetchLog) OutcomeCounts(since time.Time) (map[string]map[string]int, error) {
	rows, err := l.db.Query(`SELECT resource, outcome, COUNT(*)
		FROM fetch_cycles WHERE started_at >= ?
		GROUP BY resource, outcome`, since.UTC().Format(timeLayout))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]map[string]int)
	for rows.Next() {
		var resource, outcome string
		var n int
		if err := rows.Scan(&resource, &outcome, &n); err != nil {
			return nil, err
		}
		if out[resource] == nil {
			out[resource] = make(map[string]int)
		}
		out[resource][outcome] = n
	}
	return out, rows.Err()
}

// Prune deletes entries that started before cutoff and returns how many were removed.
func (l *FetchLog) Prune(cutoff time.Time) (int64, error) {
	res, err := l.db.Exec("DELETE FROM fetch_cycles WHERE started_at < ?",
		cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Count returns the number of logged cycles.
func (l *FetchLog) Count() (int, error) {
	var count int
	err := l.db.QueryRow("SELECT COUNT(*) FROM fetch_cycles").Scan(&count)
	return count, err
}

// Resources lists the distinct resources present in the log.
func (l *FetchLog) Resources() ([]string, error) {
	rows, err := l.db.Query("SELECT DISTINCT resource FROM fetch_cycles ORDER BY resource")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
