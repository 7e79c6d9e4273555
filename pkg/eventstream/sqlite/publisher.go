// Package sqlite records decoded events in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/ssecodec/pkg/eventstream"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	event_id       TEXT PRIMARY KEY,
	schema_version INTEGER NOT NULL,
	emitted_at     TEXT NOT NULL,
	source         TEXT NOT NULL,
	sequence       INTEGER NOT NULL,
	type           TEXT NOT NULL,
	data           TEXT NOT NULL,
	last_event_id  TEXT,
	retry_ms       INTEGER
);
CREATE INDEX IF NOT EXISTS events_source_sequence ON events (source, sequence);
`

const insertEvent = `
INSERT INTO events (
	event_id, schema_version, emitted_at, source, sequence,
	type, data, last_event_id, retry_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Publisher inserts one row per envelope into the events table.
type Publisher struct {
	db *sql.DB
}

// NewPublisher opens (or creates) the database at dbPath and ensures the
// events table exists. dbPath can be ":memory:".
func NewPublisher(dbPath string) (*Publisher, error) {
	// Registered as "sqlite3" by github.com/mattn/go-sqlite3
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database lives only as long as its connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Publisher{db: db}, nil
}

// Publish inserts the envelope.
func (p *Publisher) Publish(ctx context.Context, event *eventstream.DecodedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	var retry sql.NullInt64
	if event.Event.Retry != nil {
		retry = sql.NullInt64{Int64: int64(*event.Event.Retry), Valid: true}
	}

	var lastID sql.NullString
	if event.Event.ID != nil {
		lastID = sql.NullString{String: *event.Event.ID, Valid: true}
	}

	_, err := p.db.ExecContext(ctx, insertEvent,
		event.EventID,
		event.SchemaVersion,
		event.EmittedAt.UTC().Format(time.RFC3339Nano),
		event.Source,
		event.Sequence,
		event.Event.Type,
		event.Event.Data,
		lastID,
		retry,
	)
	if err != nil {
		return fmt.Errorf("inserting event %s: %w", event.EventID, err)
	}

	return nil
}

// Count returns the number of recorded events for source. An empty source
// counts every event.
func (p *Publisher) Count(ctx context.Context, source string) (int, error) {
	query := "SELECT COUNT(*) FROM events"
	var args []any
	if source != "" {
		query += " WHERE source = ?"
		args = append(args, source)
	}

	var n int
	if err := p.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting events: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (p *Publisher) Close() error {
	return p.db.Close()
}
