package eventstream

import "time"

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeRequestPersisted is emitted after a captured request is
	// persisted as a new unique record.
	EventTypeRequestPersisted = "scraper.request.persisted"
)

// RequestPersistedEvent is a transport-neutral event payload for a persisted
// capture. Duplicates do not emit events; only first-time inserts do.
type RequestPersistedEvent struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	EventID       string       `json:"event_id"`
	EmittedAt     time.Time    `json:"emitted_at"`
	Session       EventSession `json:"session"`
	Request       RequestMeta  `json:"request"`
	Content       ContentMeta  `json:"content"`
}

// EventSession identifies the capture session the request belongs to.
type EventSession struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
}

// RequestMeta captures request lifecycle metadata for the event.
type RequestMeta struct {
	Number       int       `json:"number"`
	Endpoint     string    `json:"endpoint"`
	Timestamp    time.Time `json:"timestamp"`
	RawSizeBytes int       `json:"raw_size_bytes"`
}

// ContentMeta carries the fingerprints and extraction counts, not the
// content itself. Consumers fetch full records from the store by fingerprint.
type ContentMeta struct {
	TextFingerprint string `json:"text_fingerprint"`
	JSONFingerprint string `json:"json_fingerprint"`
	JSONObjects     int    `json:"json_objects"`
	TextCount       int    `json:"text_count"`
}
