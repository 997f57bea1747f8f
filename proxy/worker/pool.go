// Package worker provides an asynchronous worker pool running captured
// requests through the extraction pipeline.
//
// The pool decouples extraction and storage from the proxy's HTTP hot path so
// that the client-proxy-upstream interaction is fully transparent.
package worker

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/capture"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/pipeline"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
)

// Job is a unit of work for the worker pool to execute against. The request
// number is assigned synchronously on the hot path so ordering is fixed
// before the job is queued.
type Job struct {
	Session *capture.Session
	Num     int
	Req     capture.Request
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Pipeline processes each captured request.
	Pipeline *pipeline.Pipeline

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Pool processes capture jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Pipeline == nil {
		return nil, fmt.Errorf("worker pool requires a pipeline")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("job queued",
			zap.Int("request_number", job.Num),
			zap.String("endpoint", job.Req.Endpoint),
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			zap.Int("request_number", job.Num),
			zap.String("endpoint", job.Req.Endpoint),
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the proxy HTTP server has stopped.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", zap.Uint("worker_id", id))

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("capture worker stopped", zap.Uint("worker_id", id))
}

// processJob runs one captured request through the pipeline and logs the
// outcome. Pipeline errors never propagate past the worker.
func (p *Pool) processJob(job Job) {
	ctx := context.Background()

	outcome, err := p.config.Pipeline.Process(ctx, job.Session, job.Num, job.Req)
	if err != nil {
		p.logger.Error("request dropped",
			zap.Int("request_number", job.Num),
			zap.String("endpoint", job.Req.Endpoint),
			zap.Error(err),
		)
		return
	}

	switch {
	case outcome.StoreErr != nil:
		p.logger.Warn("request captured to files only",
			zap.Int("request_number", outcome.RequestNumber),
			zap.String("endpoint", outcome.Endpoint),
			zap.Error(outcome.StoreErr),
		)
	case outcome.Duplicate:
		p.logger.Info("duplicate request skipped",
			zap.Int("request_number", outcome.RequestNumber),
			zap.String("endpoint", outcome.Endpoint),
		)
	default:
		p.logger.Info("request stored",
			zap.Int("request_number", outcome.RequestNumber),
			zap.String("endpoint", outcome.Endpoint),
			zap.Int("json_objects", outcome.Fragments),
			zap.Int("texts", outcome.Texts),
		)
	}
}
