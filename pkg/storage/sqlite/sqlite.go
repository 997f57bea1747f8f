// Package sqlite provides a SQLite-backed storage driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/storage/sqlstore"
)

// Schema: one table for request records and session markers, discriminated
// by kind, matching the original single-collection layout. The partial
// unique index is what enforces dedup at the store level; the remaining
// indexes keep existence checks and stats aggregation sub-linear.
const schema = `
CREATE TABLE IF NOT EXISTS records (
	id               TEXT PRIMARY KEY,
	session_id       TEXT NOT NULL,
	kind             TEXT NOT NULL,
	request_number   INTEGER NOT NULL DEFAULT 0,
	timestamp        TIMESTAMP NOT NULL,
	endpoint         TEXT NOT NULL DEFAULT '',
	json_objects     TEXT NOT NULL DEFAULT '[]',
	extracted_texts  TEXT NOT NULL DEFAULT '[]',
	raw_size_bytes   INTEGER NOT NULL DEFAULT 0,
	text_fingerprint TEXT NOT NULL DEFAULT '',
	json_fingerprint TEXT NOT NULL DEFAULT '',
	total_requests   INTEGER NOT NULL DEFAULT 0,
	attempts         INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_records_session ON records (session_id);
CREATE INDEX IF NOT EXISTS idx_records_session_kind ON records (session_id, kind);
CREATE INDEX IF NOT EXISTS idx_records_timestamp ON records (timestamp);
CREATE UNIQUE INDEX IF NOT EXISTS idx_records_dedup
	ON records (session_id, text_fingerprint, json_fingerprint)
	WHERE kind = 'api_request';
`

var queries = sqlstore.Queries{
	InsertRequest: `
INSERT INTO records (
	id, session_id, kind, request_number, timestamp, endpoint,
	json_objects, extracted_texts, raw_size_bytes,
	text_fingerprint, json_fingerprint
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (session_id, text_fingerprint, json_fingerprint)
	WHERE kind = 'api_request'
	DO UPDATE SET attempts = attempts + 1
RETURNING attempts`,
	InsertMarker: `
INSERT INTO records (id, kind, session_id, timestamp, total_requests)
VALUES (?, ?, ?, ?, ?)`,
	SessionStats: `
SELECT COALESCE(SUM(attempts), 0), COUNT(*)
FROM records
WHERE session_id = ? AND kind = ?`,
}

// Driver implements storage.Driver using SQLite.
type Driver struct {
	*sqlstore.Store
}

// NewDriver creates a SQLite-backed store. The dbPath can be a file path or
// ":memory:" for an in-memory database.
func NewDriver(ctx context.Context, dbPath string) (*Driver, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite-specific pragmas
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Driver{
		Store: &sqlstore.Store{
			DB: db,
			Q:  queries,
		},
	}, nil
}
