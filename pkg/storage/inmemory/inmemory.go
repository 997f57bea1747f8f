// Package inmemory provides a map-backed storage driver for tests and
// store-less runs.
package inmemory

import (
	"context"
	"errors"
	"sync"

	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/record"
)

type entry struct {
	rec      *record.Record
	attempts int
}

// Driver implements storage.Driver using in-memory maps.
type Driver struct {
	// mu guards both maps below.
	mu sync.Mutex

	// records indexes request entries by (session, text fp, json fp), the
	// same key the SQL drivers enforce with a unique index.
	records map[string]*entry

	// markers holds session lifecycle markers in insertion order.
	markers []*record.Marker
}

// NewDriver creates an empty in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		records: make(map[string]*entry),
	}
}

func dedupKey(sessionID, textFP, jsonFP string) string {
	return sessionID + "\x00" + textFP + "\x00" + jsonFP
}

// InsertRequest inserts the record unless an identical one exists in the
// same session. Duplicate attempts are counted for statistics.
func (d *Driver) InsertRequest(_ context.Context, rec *record.Record) (bool, error) {
	if rec == nil {
		return false, errors.New("cannot insert nil record")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	key := dedupKey(rec.SessionID, rec.TextFingerprint, rec.JSONFingerprint)
	if existing, ok := d.records[key]; ok {
		existing.attempts++
		return false, nil
	}

	d.records[key] = &entry{rec: rec, attempts: 1}
	return true, nil
}

// PutMarker appends a session marker.
func (d *Driver) PutMarker(_ context.Context, m *record.Marker) error {
	if m == nil {
		return errors.New("cannot insert nil marker")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.markers = append(d.markers, m)
	return nil
}

// Stats aggregates dedup outcomes for the session.
func (d *Driver) Stats(_ context.Context, sessionID string) (*record.Stats, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	stats := &record.Stats{SessionID: sessionID}
	for _, e := range d.records {
		if e.rec.SessionID != sessionID {
			continue
		}
		stats.TotalRequests += e.attempts
		stats.UniqueRequests++
	}
	stats.DuplicatesPrevented = stats.TotalRequests - stats.UniqueRequests

	return stats, nil
}

// Records returns all stored request records for a session, for tests.
func (d *Driver) Records(sessionID string) []*record.Record {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []*record.Record
	for _, e := range d.records {
		if e.rec.SessionID == sessionID {
			out = append(out, e.rec)
		}
	}

	return out
}

// Markers returns all stored markers for a session, for tests.
func (d *Driver) Markers(sessionID string) []*record.Marker {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []*record.Marker
	for _, m := range d.markers {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}

	return out
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}
