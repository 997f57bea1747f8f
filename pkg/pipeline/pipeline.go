// Package pipeline runs a captured request through decoding, extraction,
// file logging, deduplicated persistence, and event publication.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/capture"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/eventstream"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/extract"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/filelog"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/record"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/storage"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/utils"
)

// Outcome reports what one pipeline pass did with a request. File output and
// store output are reported separately: a store failure leaves the files as
// the capture of record.
type Outcome struct {
	RequestNumber int
	Endpoint      string

	// Fragments and Texts count what extraction found.
	Fragments int
	Texts     int

	// Inserted is true when the store accepted the record as new.
	// Duplicate is true when the store already held identical content.
	Inserted  bool
	Duplicate bool

	// StoreErr holds the store failure, if any. The request still went to
	// the session files; processing continued.
	StoreErr error
}

// Pipeline processes captured requests for one session.
type Pipeline struct {
	extractor extract.Extractor
	files     filelog.Sink
	store     storage.Driver
	publisher eventstream.Publisher
	logger    *zap.Logger

	// storeTimeout bounds each store call so a stalled backend cannot block
	// the worker pool.
	storeTimeout time.Duration
}

// Options configures optional pipeline collaborators. Zero values select
// no-op behavior for files and events; Store and Extractor are required.
type Options struct {
	Extractor    extract.Extractor
	Files        filelog.Sink
	Store        storage.Driver
	Publisher    eventstream.Publisher
	Logger       *zap.Logger
	StoreTimeout time.Duration
}

const defaultStoreTimeout = 5 * time.Second

// New builds a pipeline from options.
func New(opts Options) (*Pipeline, error) {
	if opts.Extractor == nil {
		return nil, errors.New("pipeline requires an extractor")
	}
	if opts.Store == nil {
		return nil, errors.New("pipeline requires a storage driver")
	}

	p := &Pipeline{
		extractor:    opts.Extractor,
		files:        opts.Files,
		store:        opts.Store,
		publisher:    opts.Publisher,
		logger:       opts.Logger,
		storeTimeout: opts.StoreTimeout,
	}
	if p.files == nil {
		p.files = filelog.Discard{}
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.storeTimeout <= 0 {
		p.storeTimeout = defaultStoreTimeout
	}

	return p, nil
}

// Process runs one captured request through the pipeline. The request number
// must have been assigned by the caller from the session counter.
//
// An error return means the request was dropped before extraction. Store
// failures do not produce an error; they are reported in Outcome.StoreErr.
func (p *Pipeline) Process(ctx context.Context, sess *capture.Session, num int, req capture.Request) (*Outcome, error) {
	text, err := capture.DecodeBody(req.Raw)
	if err != nil {
		return nil, fmt.Errorf("request %d: %w", num, err)
	}

	result := p.extractor.Extract(text)
	groups := extract.HarvestGroups(result.Fragments)

	outcome := &Outcome{
		RequestNumber: num,
		Endpoint:      req.Endpoint,
		Fragments:     len(result.Fragments),
	}
	for _, g := range groups {
		outcome.Texts += len(g.Texts)
	}

	if len(groups) > 0 && len(groups[0].Texts) > 0 {
		p.logger.Debug("harvested text",
			zap.Int("request_number", num),
			zap.String("preview", utils.Truncate(groups[0].Texts[0], 80)))
	}

	p.writeFiles(num, req, text, result)

	rec := record.NewRequest(sess.ID, num, req.Timestamp, req.Endpoint,
		result.Fragments, groups, req.Size())

	storeCtx, cancel := context.WithTimeout(ctx, p.storeTimeout)
	defer cancel()

	inserted, err := p.store.InsertRequest(storeCtx, rec)
	if err != nil {
		outcome.StoreErr = err
		p.logger.Warn("store unavailable, request kept in files only",
			zap.Int("request_number", num),
			zap.Error(err))
		return outcome, nil
	}

	outcome.Inserted = inserted
	outcome.Duplicate = !inserted

	if inserted {
		p.publish(ctx, sess, rec, outcome)
	}

	return outcome, nil
}

// writeFiles sends the request to all four session files. File write errors
// are logged and swallowed; one bad file never stops the pipeline.
func (p *Pipeline) writeFiles(num int, req capture.Request, text string, result extract.Result) {
	fullURL := req.Host + req.Endpoint
	ts := req.Timestamp

	if err := p.files.WriteRaw(num, ts, req.Endpoint, fullURL, text); err != nil {
		p.logger.Warn("writing raw log", zap.Int("request_number", num), zap.Error(err))
	}
	if err := p.files.WriteBinary(num, ts, req.Raw); err != nil {
		p.logger.Warn("writing binary log", zap.Int("request_number", num), zap.Error(err))
	}
	if err := p.files.WriteClean(num, ts, capture.FilterPrintable(text)); err != nil {
		p.logger.Warn("writing clean log", zap.Int("request_number", num), zap.Error(err))
	}
	if err := p.files.WriteJSON(num, ts, p.extractor.Name(), result.Fragments); err != nil {
		p.logger.Warn("writing json log", zap.Int("request_number", num), zap.Error(err))
	}
}

// publish emits a persisted-request event. Publish failures are logged,
// never propagated: the record is already durable.
func (p *Pipeline) publish(ctx context.Context, sess *capture.Session, rec *record.Record, outcome *Outcome) {
	if p.publisher == nil {
		return
	}

	event := &eventstream.RequestPersistedEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeRequestPersisted,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Session: eventstream.EventSession{
			ID:        sess.ID,
			StartedAt: sess.StartedAt,
		},
		Request: eventstream.RequestMeta{
			Number:       rec.RequestNumber,
			Endpoint:     rec.Endpoint,
			Timestamp:    rec.Timestamp,
			RawSizeBytes: rec.RawSizeBytes,
		},
		Content: eventstream.ContentMeta{
			TextFingerprint: rec.TextFingerprint,
			JSONFingerprint: rec.JSONFingerprint,
			JSONObjects:     outcome.Fragments,
			TextCount:       outcome.Texts,
		},
	}

	if err := p.publisher.PublishRequest(ctx, event); err != nil {
		p.logger.Warn("publishing request event",
			zap.Int("request_number", rec.RequestNumber),
			zap.Error(err))
	}
}
