// Package worker runs the per-match part of a refresh cycle: statistics
// enrichment and prediction.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/goalcast/internal/adapters/mq/queue"
	"github.com/okian/goalcast/internal/domain/engine"
	"github.com/okian/goalcast/internal/domain/model"
	"github.com/okian/goalcast/pkg/logger"
	"github.com/okian/goalcast/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Processor turns one raw match into a prediction.
type Processor interface {
	Process(raw model.RawMatch) (model.Prediction, error)
}

// Enricher fetches the statistics block of one match.
type Enricher interface {
	Statistics(ctx context.Context, id string) (*model.RawStats, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue() <-chan queue.Job
}

// Worker processes jobs until its queue closes or it is shut down.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker and waits for the current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	processor Processor
	enricher  Enricher
	statsWait time.Duration
	name      string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, p Processor, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		processor: p,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.processJob(j); err != nil {
				w.logger.Debug(ctx, "match skipped", logger.String("match_id", j.Match.ID), logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob settles exactly one job of the batch.
func (w *InMemoryWorker) processJob(j queue.Job) error { //nolint:gocritic // hugeParam: Job is received by value
	start := time.Now()
	defer func() {
		metrics.RecordWorkerLatency(float64(time.Since(start).Milliseconds()))
	}()

	ctx := j.Batch.Context()
	if ctx.Err() != nil {
		j.Batch.Drop()
		return fmt.Errorf("batch expired: %w", ctx.Err())
	}

	m := j.Match
	if w.enricher != nil && m.Stats == nil {
		m.Stats = w.enrich(ctx, m.ID)
	}

	pred, err := w.processor.Process(m)
	switch {
	case errors.Is(err, engine.ErrRejected):
		metrics.RecordMatchRejected()
		j.Batch.Reject()
		return err
	case err != nil:
		metrics.RecordMatchFailed()
		metrics.RecordWorkerError()
		w.logger.Error(ctx, "match processing failed", logger.String("match_id", m.ID), logger.Error(err))
		j.Batch.Fail()
		return err
	}

	metrics.RecordMatchProcessed()
	j.Batch.Add(pred)
	return nil
}

// enrich fetches statistics for one match within the per-request bound.
// Statistics are optional; on failure the match is processed with defaults.
func (w *InMemoryWorker) enrich(ctx context.Context, id string) *model.RawStats {
	if w.statsWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.statsWait)
		defer cancel()
	}
	stats, err := w.enricher.Statistics(ctx, id)
	if err != nil {
		w.logger.Debug(ctx, "statistics unavailable", logger.String("match_id", id), logger.Error(err))
		return nil
	}
	return stats
}

// Pool manages a fixed set of workers reading one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers. A non-positive count uses
// one worker per CPU.
func NewPool(workerCount int, q Queue, p Processor, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(q, p, wopts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for every worker to stop.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	for _, w := range p.workers {
		close(w.shutdown)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("worker %d: %w", i, shutdownCtx.Err())
		}
	}
	metrics.UpdateWorkerCount(0)
	return nil
}
