// Package dedupe remembers recently seen keys so the same match state is
// announced only once.
package dedupe

import (
	"context"
	"sync"
)

const defaultMaxSize = 1000

// Deduper records seen keys inside a bounded window.
type Deduper interface {
	// SeenAndRecord reports whether key was already in the window and
	// records it when it was not.
	SeenAndRecord(ctx context.Context, key string) bool

	// Size returns the number of keys in the window.
	Size() int64
}

// window is a ring of keys with a set index. When full the oldest key is
// evicted. A non-positive maxSize disables eviction.
type window struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	ring    []string
	next    int
	maxSize int
}

// NewInMemoryDeduper creates a Deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	w := &window{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(w)
	}
	w.seen = make(map[string]struct{})
	if w.maxSize > 0 {
		w.ring = make([]string, 0, w.maxSize)
	}
	return w
}

func (w *window) SeenAndRecord(_ context.Context, key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.seen[key]; ok {
		return true
	}
	w.seen[key] = struct{}{}

	if w.maxSize <= 0 {
		return false
	}
	if len(w.ring) < w.maxSize {
		w.ring = append(w.ring, key)
		return false
	}
	delete(w.seen, w.ring[w.next])
	w.ring[w.next] = key
	w.next = (w.next + 1) % w.maxSize
	return false
}

func (w *window) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return int64(len(w.seen))
}
