// Package sqlstore implements the storage driver logic shared by the SQL
// backends. The sqlite and postgres packages open the connection, create the
// schema, and supply dialect-specific statements; everything else lives here.
package sqlstore

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"context"

	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/record"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/storage"
)

// Queries holds the dialect-specific SQL used by Store. The insert statement
// must be an upsert that bumps the attempts counter on conflict and returns
// the resulting attempts value, so duplicate detection is a single
// store-enforced statement rather than a racy read-then-write.
type Queries struct {
	// InsertRequest params: id, session_id, kind, request_number,
	// timestamp, endpoint, json_objects, extracted_texts, raw_size_bytes,
	// text_fingerprint, json_fingerprint. Returns attempts.
	InsertRequest string

	// InsertMarker params: id, kind, session_id, timestamp, total_requests.
	InsertMarker string

	// SessionStats params: session_id, kind. Returns total attempts and
	// distinct record count.
	SessionStats string
}

// Store implements storage.Driver over a database/sql connection.
type Store struct {
	DB *sql.DB
	Q  Queries
}

// InsertRequest upserts the record. The unique index on
// (session_id, text_fingerprint, json_fingerprint) makes concurrent
// identical inserts collapse to one row with attempts > 1.
func (s *Store) InsertRequest(ctx context.Context, rec *record.Record) (bool, error) {
	objects, err := json.Marshal(rec.JSONObjects)
	if err != nil {
		return false, fmt.Errorf("marshaling json objects: %w", err)
	}

	texts, err := json.Marshal(rec.ExtractedTexts)
	if err != nil {
		return false, fmt.Errorf("marshaling extracted texts: %w", err)
	}

	var attempts int
	err = s.DB.QueryRowContext(ctx, s.Q.InsertRequest,
		rec.ID,
		rec.SessionID,
		record.KindAPIRequest,
		rec.RequestNumber,
		rec.Timestamp,
		rec.Endpoint,
		string(objects),
		string(texts),
		rec.RawSizeBytes,
		rec.TextFingerprint,
		rec.JSONFingerprint,
	).Scan(&attempts)
	if err != nil {
		return false, fmt.Errorf("%w: inserting request: %v", storage.ErrUnavailable, err)
	}

	return attempts == 1, nil
}

// PutMarker inserts a session lifecycle marker. Markers are never
// deduplicated.
func (s *Store) PutMarker(ctx context.Context, m *record.Marker) error {
	_, err := s.DB.ExecContext(ctx, s.Q.InsertMarker,
		m.ID,
		m.Kind,
		m.SessionID,
		m.Timestamp,
		m.TotalRequests,
	)
	if err != nil {
		return fmt.Errorf("%w: inserting marker: %v", storage.ErrUnavailable, err)
	}

	return nil
}

// Stats aggregates per-session dedup outcomes from the attempts counters.
func (s *Store) Stats(ctx context.Context, sessionID string) (*record.Stats, error) {
	stats := &record.Stats{SessionID: sessionID}

	err := s.DB.QueryRowContext(ctx, s.Q.SessionStats, sessionID, record.KindAPIRequest).
		Scan(&stats.TotalRequests, &stats.UniqueRequests)
	if err != nil {
		return nil, fmt.Errorf("%w: aggregating stats: %v", storage.ErrUnavailable, err)
	}

	stats.DuplicatesPrevented = stats.TotalRequests - stats.UniqueRequests
	return stats, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.DB.Close()
}
