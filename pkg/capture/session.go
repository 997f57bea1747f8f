package capture

import (
	"sync/atomic"
	"time"
)

// sessionIDLayout is the timestamp layout used to derive session IDs,
// e.g. "20250115_142233".
const sessionIDLayout = "20060102_150405"

// Session scopes one continuous run of the capture pipeline. Deduplication
// and statistics are always qualified by the session ID, so restarting the
// process starts a fresh dedup scope.
//
// Session is an explicit value passed into pipeline calls rather than
// ambient process state, which keeps cross-session behavior testable.
type Session struct {
	// ID is the timestamp-derived session identifier.
	ID string

	// StartedAt is when the session began.
	StartedAt time.Time

	counter atomic.Int64
}

// NewSession creates a session identified by the current time.
func NewSession() *Session {
	return NewSessionAt(time.Now())
}

// NewSessionAt creates a session identified by the given time.
func NewSessionAt(t time.Time) *Session {
	return &Session{
		ID:        t.Format(sessionIDLayout),
		StartedAt: t,
	}
}

// Next increments the session's request counter and returns the new value.
// Request numbers start at 1.
func (s *Session) Next() int {
	return int(s.counter.Add(1))
}

// Count returns the number of requests routed through the session so far.
func (s *Session) Count() int {
	return int(s.counter.Load())
}
