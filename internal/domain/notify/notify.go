// Package notify keeps the capped, newest-first list of notification entries.
package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/goalcast/internal/domain/dedupe"
	"github.com/okian/goalcast/internal/domain/model"
)

// Defaults for a Board.
const (
	DefaultCapacity  = 25
	DefaultFreshness = 45 * time.Second
	DefaultThreshold = 70
)

// Board is a copy-on-write list of notifications. Readers load an immutable
// slice and never observe a partial update; writers are serialised.
type Board struct {
	entries atomic.Pointer[[]model.Notification]
	mu      sync.Mutex

	capacity  int
	fresh     time.Duration
	threshold int
	seen      dedupe.Deduper
	now       func() time.Time
}

// NewBoard creates an empty Board.
func NewBoard(opts ...Option) *Board {
	b := &Board{
		capacity:  DefaultCapacity,
		fresh:     DefaultFreshness,
		threshold: DefaultThreshold,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.seen == nil {
		b.seen = dedupe.NewInMemoryDeduper()
	}
	empty := []model.Notification{}
	b.entries.Store(&empty)
	return b
}

// Qualifies reports whether a prediction is confident enough to notify.
func (b *Board) Qualifies(p model.Prediction) bool {
	return p.Confidence >= b.threshold
}

// Entry captures a prediction as a notification created at at.
func Entry(p model.Prediction, at time.Time) model.Notification {
	return model.Notification{
		ID:             uuid.NewString(),
		MatchID:        p.MatchID,
		HomeTeam:       p.HomeTeam,
		AwayTeam:       p.AwayTeam,
		League:         p.League,
		Score:          p.Score,
		Minute:         p.Minute,
		Confidence:     p.Confidence,
		Recommendation: p.Recommendation,
		Alert:          p.Alert,
		CreatedAt:      at,
	}
}

// Offer pushes every qualifying prediction whose match state has not been
// announced yet and returns the new entries. preds are expected in rank
// order; the best ranked ends up on top.
func (b *Board) Offer(ctx context.Context, preds []model.Prediction) []model.Notification {
	at := b.now()
	var fresh []model.Notification
	for i := len(preds) - 1; i >= 0; i-- {
		p := preds[i]
		if !b.Qualifies(p) {
			continue
		}
		if b.seen.SeenAndRecord(ctx, p.MatchID+":"+p.Score) {
			continue
		}
		fresh = append(fresh, Entry(p, at))
	}
	b.Push(fresh...)
	return fresh
}

// Push inserts entries in order, each becoming the newest, and drops the
// oldest beyond capacity.
func (b *Board) Push(entries ...model.Notification) {
	if len(entries) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	old := *b.entries.Load()
	n := min(len(entries)+len(old), b.capacity)
	next := make([]model.Notification, 0, n)
	for i := len(entries) - 1; i >= 0 && len(next) < n; i-- {
		next = append(next, entries[i])
	}
	for _, e := range old {
		if len(next) == n {
			break
		}
		next = append(next, e)
	}
	b.entries.Store(&next)
}

// List returns the entries newest first with freshness computed against now.
func (b *Board) List(now time.Time) []model.NotificationView {
	cur := *b.entries.Load()
	out := make([]model.NotificationView, len(cur))
	for i, e := range cur {
		age := now.Sub(e.CreatedAt)
		out[i] = model.NotificationView{
			Notification: e,
			Fresh:        age < b.fresh,
			AgeSeconds:   int64(max(age, 0) / time.Second),
		}
	}
	return out
}

// Len returns the number of entries on the board.
func (b *Board) Len() int {
	return len(*b.entries.Load())
}
