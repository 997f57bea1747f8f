package storage

import "errors"

// ErrUnavailable indicates the backing store is unreachable or the operation
// timed out. Callers degrade to a reported no-op and keep processing; the
// pipeline continues in file-only mode.
var ErrUnavailable = errors.New("store unavailable")
