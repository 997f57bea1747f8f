package eventstream

import "context"

// Publisher publishes capture events to an event stream backend.
type Publisher interface {
	PublishRequest(ctx context.Context, event *RequestPersistedEvent) error
	Close() error
}
