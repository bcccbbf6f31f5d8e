// Package journal keeps a local SQLite log of operator mutations.
//
// It stores what the operator did and how the remote collection answered.
// It never stores listing pages or user records.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one mutation outcome.
type Entry struct {
	ID     int64
	Time   time.Time
	Op     string // "toggle_active", "update", "delete"
	UserID string
	Detail string
	Err    string // empty on success
}

// OK reports whether the mutation succeeded.
func (e Entry) OK() bool {
	return e.Err == ""
}

// Journal is the SQLite-backed mutation log. Safe for concurrent use.
type Journal struct {
	db *sql.DB
	mu sync.Mutex
}

// memorySeq names in-memory databases so that each Open gets its own.
var memorySeq atomic.Uint64

// Open opens or creates the journal at path. ":memory:" gives a private
// in-memory database.
func Open(path string) (*Journal, error) {
	connStr := path
	if path == ":memory:" {
		connStr = fmt.Sprintf("file:journal-%d?mode=memory&cache=shared", memorySeq.Add(1))
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	if path == ":memory:" {
		// Every pooled connection would otherwise get its own database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping journal: %w", err)
	}

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	j := &Journal{db: db}
	if err := j.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return j, nil
}

func (j *Journal) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS mutations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		at DATETIME NOT NULL,
		op TEXT NOT NULL,
		user_id TEXT NOT NULL,
		detail TEXT,
		err TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_mutations_at ON mutations(at DESC);
	CREATE INDEX IF NOT EXISTS idx_mutations_user ON mutations(user_id);
	`
	if _, err := j.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.db.Close()
}

// Record appends e. A zero Time is replaced with the current time.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO mutations (at, op, user_id, detail, err) VALUES (?, ?, ?, ?, ?)`,
		e.Time.UTC(), e.Op, e.UserID, e.Detail, e.Err)
	if err != nil {
		return fmt.Errorf("record mutation: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	return j.query(ctx, `
		SELECT id, at, op, user_id, COALESCE(detail, ''), COALESCE(err, '')
		FROM mutations
		ORDER BY at DESC, id DESC
		LIMIT ?`, limit)
}

// ForUser returns up to limit entries about one user, newest first.
func (j *Journal) ForUser(ctx context.Context, userID string, limit int) ([]Entry, error) {
	return j.query(ctx, `
		SELECT id, at, op, user_id, COALESCE(detail, ''), COALESCE(err, '')
		FROM mutations
		WHERE user_id = ?
		ORDER BY at DESC, id DESC
		LIMIT ?`, userID, limit)
}

func (j *Journal) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query mutations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Time, &e.Op, &e.UserID, &e.Detail, &e.Err); err != nil {
			return nil, fmt.Errorf("scan mutation: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
