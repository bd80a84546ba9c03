// Package cache stores the latest prediction snapshot with a time-to-live.
//
// Two backends exist: Memory, which swaps an immutable entry behind an atomic
// pointer, and Redis, which shares the snapshot between replicas.
package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/okian/goalcast/internal/domain/model"
	"github.com/okian/goalcast/pkg/metrics"
)

// Backend names, also used as metric labels.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Store keeps one snapshot. Get returns ErrCacheMiss when nothing is stored
// or the stored snapshot has expired.
type Store interface {
	Get(ctx context.Context) (*model.Snapshot, error)
	Put(ctx context.Context, snap *model.Snapshot, ttl time.Duration) error
}

type entry struct {
	snap    *model.Snapshot
	expires time.Time
}

// Memory is a process-local Store. Readers never observe a partial write.
type Memory struct {
	cur atomic.Pointer[entry]
	now func() time.Time
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemory creates an empty in-process store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the stored snapshot while it is fresh.
func (m *Memory) Get(_ context.Context) (*model.Snapshot, error) {
	e := m.cur.Load()
	if e == nil || (!e.expires.IsZero() && !m.now().Before(e.expires)) {
		metrics.RecordCacheMiss(BackendMemory)
		return nil, ErrCacheMiss
	}
	metrics.RecordCacheHit(BackendMemory)
	return e.snap, nil
}

// Put replaces the stored snapshot. A non-positive ttl never expires.
func (m *Memory) Put(_ context.Context, snap *model.Snapshot, ttl time.Duration) error {
	if snap == nil {
		return ErrNilValue
	}
	e := &entry{snap: snap}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.cur.Store(e)
	return nil
}
