// Package record defines the persisted document shapes: dedup records for
// captured requests, session lifecycle markers, and derived statistics.
package record

import (
	"time"

	"github.com/google/uuid"

	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/extract"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/fingerprint"
)

// Record kinds as stored. Markers and request records share one collection,
// discriminated by kind, which keeps session-scoped queries on one index.
const (
	KindAPIRequest   = "api_request"
	KindSessionStart = "session_start"
	KindSessionEnd   = "session_end"
)

// Record is one persisted capture. Created once per accepted (non-duplicate)
// request; never mutated, never deleted by the pipeline.
type Record struct {
	ID              string              `json:"id"`
	SessionID       string              `json:"session_id"`
	RequestNumber   int                 `json:"request_number"`
	Timestamp       time.Time           `json:"timestamp"`
	Endpoint        string              `json:"endpoint"`
	JSONObjects     []extract.Fragment  `json:"json_objects"`
	ExtractedTexts  []extract.TextGroup `json:"extracted_texts"`
	RawSizeBytes    int                 `json:"raw_size_bytes"`
	TextFingerprint string              `json:"text_fingerprint"`
	JSONFingerprint string              `json:"json_fingerprint"`
}

// NewRequest builds a Record for a captured request, computing both
// fingerprints from the extracted content. The ID is assigned up front so
// all storage backends persist the same identity.
func NewRequest(sessionID string, num int, ts time.Time, endpoint string,
	frags []extract.Fragment, groups []extract.TextGroup, rawSize int) *Record {
	return &Record{
		ID:              uuid.NewString(),
		SessionID:       sessionID,
		RequestNumber:   num,
		Timestamp:       ts,
		Endpoint:        endpoint,
		JSONObjects:     frags,
		ExtractedTexts:  groups,
		RawSizeBytes:    rawSize,
		TextFingerprint: fingerprint.Text(groups),
		JSONFingerprint: fingerprint.Objects(frags),
	}
}

// Marker is a session lifecycle event: one start and, normally, one end per
// session. TotalRequests is set on end markers only.
type Marker struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	SessionID     string    `json:"session_id"`
	Timestamp     time.Time `json:"timestamp"`
	TotalRequests int       `json:"total_requests,omitempty"`
}

// NewStartMarker builds a session-start marker.
func NewStartMarker(sessionID string, ts time.Time) *Marker {
	return &Marker{
		ID:        uuid.NewString(),
		Kind:      KindSessionStart,
		SessionID: sessionID,
		Timestamp: ts,
	}
}

// NewEndMarker builds a session-end marker carrying the final request count.
func NewEndMarker(sessionID string, ts time.Time, totalRequests int) *Marker {
	return &Marker{
		ID:            uuid.NewString(),
		Kind:          KindSessionEnd,
		SessionID:     sessionID,
		Timestamp:     ts,
		TotalRequests: totalRequests,
	}
}

// Stats summarizes one session's dedup outcomes. DuplicatesPrevented is
// derived: total insert attempts minus distinct fingerprint pairs.
type Stats struct {
	SessionID           string `json:"session_id"`
	TotalRequests       int    `json:"total_requests"`
	UniqueRequests      int    `json:"unique_requests"`
	DuplicatesPrevented int    `json:"duplicates_prevented"`
}
