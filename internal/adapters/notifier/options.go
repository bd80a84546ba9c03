package notifier

import (
	"time"

	"github.com/okian/goalcast/pkg/logger"
)

// Option applies a configuration option to the Telegram sink.
type Option func(*Telegram)

// WithBuffer sets how many messages may wait for sending.
func WithBuffer(n int) Option {
	return func(t *Telegram) {
		if n > 0 {
			t.buffer = n
		}
	}
}

// WithInterval sets the minimum gap between two messages to the chat.
func WithInterval(d time.Duration) Option {
	return func(t *Telegram) {
		if d >= 0 {
			t.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(t *Telegram) {
		if l != nil {
			t.log = l
		}
	}
}
