package notify

import (
	"time"

	"github.com/okian/goalcast/internal/domain/dedupe"
)

// Option applies a configuration option to the Board.
type Option func(*Board)

// WithCapacity sets how many entries the board keeps.
func WithCapacity(n int) Option {
	return func(b *Board) {
		if n > 0 {
			b.capacity = n
		}
	}
}

// WithFreshness sets how long an entry is reported as fresh.
func WithFreshness(d time.Duration) Option {
	return func(b *Board) {
		if d > 0 {
			b.fresh = d
		}
	}
}

// WithThreshold sets the minimum confidence for a prediction to qualify.
func WithThreshold(confidence int) Option {
	return func(b *Board) {
		b.threshold = confidence
	}
}

// WithDeduper sets the window used to suppress repeated match states.
func WithDeduper(d dedupe.Deduper) Option {
	return func(b *Board) {
		if d != nil {
			b.seen = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Board) {
		if now != nil {
			b.now = now
		}
	}
}
