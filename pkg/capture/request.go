// Package capture defines the captured-request and session values handed to
// the extraction pipeline by the intercepting proxy.
package capture

import "time"

// Request is one observed outbound API request. It is immutable once
// constructed and owned by the pipeline invocation processing it; only
// derived records are persisted.
type Request struct {
	// Endpoint is the request path on the upstream API.
	Endpoint string

	// Host is the upstream host the request was addressed to.
	Host string

	// Timestamp is when the request was observed.
	Timestamp time.Time

	// Raw is the request body exactly as sent by the client. The body mixes
	// a binary envelope with embedded JSON fragments.
	Raw []byte
}

// Size returns the raw body size in bytes.
func (r Request) Size() int {
	return len(r.Raw)
}
