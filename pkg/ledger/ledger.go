// Package ledger records session lifecycle markers in the store so a session's
// boundaries survive alongside its captured requests.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/capture"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/record"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/storage"
)

// Ledger writes start and end markers for capture sessions. End is not
// idempotent: every call writes a marker, but repeat calls for the same
// session are logged so operator mistakes are visible.
type Ledger struct {
	store  storage.Driver
	logger *zap.Logger

	mu    sync.Mutex
	ended map[string]bool
}

func New(store storage.Driver, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		store:  store,
		logger: logger,
		ended:  make(map[string]bool),
	}
}

// Start records a session-start marker.
func (l *Ledger) Start(ctx context.Context, sess *capture.Session) error {
	if sess == nil {
		return fmt.Errorf("starting session: nil session")
	}

	marker := record.NewStartMarker(sess.ID, sess.StartedAt)
	if err := l.store.PutMarker(ctx, marker); err != nil {
		return fmt.Errorf("recording session start: %w", err)
	}

	l.logger.Info("session started",
		zap.String("session_id", sess.ID),
		zap.Time("started_at", sess.StartedAt))

	return nil
}

// End records a session-end marker carrying the session's final request
// count. Calling End twice for the same session writes a second marker.
func (l *Ledger) End(ctx context.Context, sess *capture.Session) error {
	if sess == nil {
		return fmt.Errorf("ending session: nil session")
	}

	l.mu.Lock()
	if l.ended[sess.ID] {
		l.logger.Warn("session ended more than once",
			zap.String("session_id", sess.ID))
	}
	l.ended[sess.ID] = true
	l.mu.Unlock()

	total := sess.Count()
	marker := record.NewEndMarker(sess.ID, time.Now(), total)
	if err := l.store.PutMarker(ctx, marker); err != nil {
		return fmt.Errorf("recording session end: %w", err)
	}

	l.logger.Info("session ended",
		zap.String("session_id", sess.ID),
		zap.Int("total_requests", total))

	return nil
}
