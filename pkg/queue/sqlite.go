package queue

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
	_ "modernc.org/sqlite"
)

const (
	statusQueued  = "queued"
	statusClaimed = "claimed"

	// Fixed width, so that lexical order is also chronological order.
	timeFormat = "2006-01-02T15:04:05.000000000Z07:00"
)

// SQLite is a queue backend in a local SQLite database. Redeliveries of the
// same payload (e.g. retries by Discord) are stored only once per application.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if needed) the SQLite database at path and
// ensures that the queue table exists.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create sqlite directory: %w", err)
	}

	// Pragmas in the DSN apply to every pooled connection, not just one.
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single writer at a time, so concurrent enqueues wait instead of failing.
	db.SetMaxOpenConns(1)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to sqlite: %w", err)
	}
	if err := bootstrap(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func bootstrap(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS interaction_queue (
  id             TEXT PRIMARY KEY,
  application_id TEXT NOT NULL,
  body           BLOB NOT NULL,
  dedupe_key     TEXT NOT NULL,
  status         TEXT NOT NULL,
  received_at    TEXT NOT NULL
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS interaction_queue_dedupe_idx ON interaction_queue(application_id, dedupe_key);`,
		`CREATE INDEX IF NOT EXISTS interaction_queue_status_idx ON interaction_queue(application_id, status, received_at);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap sqlite: %w", err)
		}
	}
	return nil
}

// DedupeKey returns a stable hash of a message's body.
func DedupeKey(body []byte) string {
	h := blake3.Sum256(body)
	return hex.EncodeToString(h[:])
}

func (q *SQLite) Enqueue(ctx context.Context, m Message) error {
	if m.ApplicationID == "" {
		return ErrNoApplicationID
	}

	_, err := q.db.ExecContext(ctx, `
INSERT INTO interaction_queue(id, application_id, body, dedupe_key, status, received_at)
VALUES(?, ?, ?, ?, ?, ?)
ON CONFLICT(application_id, dedupe_key) DO NOTHING;
`, m.ID, m.ApplicationID, m.Body, DedupeKey(m.Body), statusQueued, m.ReceivedAt.UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("enqueue message: %w", err)
	}
	return nil
}

// Dequeue claims the oldest queued message of an application.
// Returns (nil, nil) if there are no queued messages.
func (q *SQLite) Dequeue(ctx context.Context, appID string) (*Message, error) {
	row := q.db.QueryRowContext(ctx, `
WITH next AS (
  SELECT id
  FROM interaction_queue
  WHERE application_id = ? AND status = ?
  ORDER BY received_at ASC, rowid ASC
  LIMIT 1
)
UPDATE interaction_queue
SET status = ?
WHERE id IN (SELECT id FROM next)
RETURNING id, application_id, body, received_at;
`, appID, statusQueued, statusClaimed)

	var m Message
	var receivedAt string
	if err := row.Scan(&m.ID, &m.ApplicationID, &m.Body, &receivedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("dequeue message: %w", err)
	}

	t, err := time.Parse(timeFormat, receivedAt)
	if err != nil {
		return nil, fmt.Errorf("parse received_at of message %q: %w", m.ID, err)
	}
	m.ReceivedAt = t

	return &m, nil
}

// Ack deletes a claimed message after it was handled.
func (q *SQLite) Ack(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM interaction_queue WHERE id = ? AND status = ?;", id, statusClaimed)
	if err != nil {
		return fmt.Errorf("ack message: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("ack message: %q is not claimed", id)
	}
	return nil
}

func (q *SQLite) Close() error {
	return q.db.Close()
}
