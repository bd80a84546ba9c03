package queue

import (
	"context"
	"sync"

	"github.com/okian/goalcast/internal/domain/model"
)

// BatchStats counts how the jobs of one batch ended.
type BatchStats struct {
	Processed int
	Rejected  int
	Failed    int
	Dropped   int
}

// Batch collects the predictions of one refresh cycle. Every job of the
// batch must be settled exactly once with Add, Reject, Fail or Drop.
type Batch struct {
	ctx context.Context

	mu      sync.Mutex
	preds   []model.Prediction
	stats   BatchStats
	pending int
	done    chan struct{}
}

// NewBatch creates a batch expecting n jobs. ctx bounds the work done for it.
func NewBatch(ctx context.Context, n int) *Batch {
	b := &Batch{
		ctx:     ctx,
		preds:   make([]model.Prediction, 0, n),
		pending: n,
		done:    make(chan struct{}),
	}
	if n <= 0 {
		close(b.done)
	}
	return b
}

// Context returns the context bounding the batch.
func (b *Batch) Context() context.Context { return b.ctx }

// Add settles a job with its prediction.
func (b *Batch) Add(p model.Prediction) { //nolint:gocritic // hugeParam: stored by value
	b.settle(func() {
		b.preds = append(b.preds, p)
		b.stats.Processed++
	})
}

// Reject settles a job refused by the validity gate.
func (b *Batch) Reject() { b.settle(func() { b.stats.Rejected++ }) }

// Fail settles a job whose processing failed.
func (b *Batch) Fail() { b.settle(func() { b.stats.Failed++ }) }

// Drop settles a job that was never processed.
func (b *Batch) Drop() { b.settle(func() { b.stats.Dropped++ }) }

func (b *Batch) settle(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending <= 0 {
		return
	}
	fn()
	b.pending--
	if b.pending == 0 {
		close(b.done)
	}
}

// Wait blocks until every job is settled or ctx is done. On ctx expiry it
// returns what was collected so far, counts unsettled jobs as dropped and
// returns the context error.
func (b *Batch) Wait(ctx context.Context) ([]model.Prediction, BatchStats, error) {
	var err error
	select {
	case <-b.done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	stats := b.stats
	stats.Dropped += b.pending
	out := make([]model.Prediction, len(b.preds))
	copy(out, b.preds)
	return out, stats, err
}
