// Package history records request/response exchanges in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS exchanges (
	id          TEXT PRIMARY KEY,
	method      TEXT NOT NULL,
	url         TEXT NOT NULL,
	request     TEXT NOT NULL,
	response    TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	duration_us INTEGER NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS exchanges_created_at ON exchanges (created_at);
`

// DefaultQueryTimeout bounds every statement
const DefaultQueryTimeout = 5 * time.Second

// Entry is one completed request.
type Entry struct {
	ID        string
	Method    string
	URL       string
	Request   string
	Response  string
	Error     string
	Duration  time.Duration
	CreatedAt time.Time
}

type Store struct {
	db           *sql.DB
	queryTimeout time.Duration
}

// Open opens or creates the history database at path. Accepts a bare path or
// a sqlite:// / sqlite: prefixed one.
func Open(path string) (*Store, error) {
	dsn := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(path), "sqlite://"), "sqlite:")
	if dsn == "" {
		return nil, fmt.Errorf("history path is empty")
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultQueryTimeout)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize history database: %w", err)
	}

	return &Store{db: db, queryTimeout: DefaultQueryTimeout}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record inserts e. A zero CreatedAt is stamped with the current time.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exchanges (id, method, url, request, response, error, duration_us, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Method, e.URL, e.Request, e.Response, e.Error,
		e.Duration.Microseconds(), e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to record exchange %s: %w", e.ID, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, method, url, request, response, error, duration_us, created_at
		 FROM exchanges ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			durationUs int64
			createdAt  int64
		)
		if err := rows.Scan(&e.ID, &e.Method, &e.URL, &e.Request, &e.Response, &e.Error, &durationUs, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		e.Duration = time.Duration(durationUs) * time.Microsecond
		e.CreatedAt = time.Unix(0, createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}

// Get returns the entry with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	var (
		e          Entry
		durationUs int64
		createdAt  int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, method, url, request, response, error, duration_us, created_at
		 FROM exchanges WHERE id = ?`, id,
	).Scan(&e.ID, &e.Method, &e.URL, &e.Request, &e.Response, &e.Error, &durationUs, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("exchange %s: %w", id, err)
	}
	e.Duration = time.Duration(durationUs) * time.Microsecond
	e.CreatedAt = time.Unix(0, createdAt)
	return &e, nil
}
