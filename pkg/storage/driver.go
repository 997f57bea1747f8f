// Package storage defines the persistence interface for dedup records and
// session markers, implemented by the inmemory, sqlite, postgres, and nop
// backends.
package storage

import (
	"context"

	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/record"
)

// Driver persists capture records with session-scoped deduplication.
//
// Uniqueness of (session_id, text_fingerprint, json_fingerprint) is enforced
// by the store itself, not by a read-then-write in the caller, so two
// concurrent identical requests cannot both insert.
type Driver interface {
	// InsertRequest attempts to persist a request record. Returns true if
	// the record was newly inserted, false if an identical record already
	// exists in the same session (the attempt is still counted for
	// statistics). A false return with nil error is the duplicate no-op.
	InsertRequest(ctx context.Context, rec *record.Record) (bool, error)

	// PutMarker persists a session lifecycle marker. Markers are not
	// deduplicated: a second end marker produces a second row.
	PutMarker(ctx context.Context, m *record.Marker) error

	// Stats aggregates dedup outcomes for one session: total insert
	// attempts, distinct fingerprint pairs, and duplicates prevented.
	Stats(ctx context.Context, sessionID string) (*record.Stats, error)

	// Close releases the backing store's resources.
	Close() error
}
