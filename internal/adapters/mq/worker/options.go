package worker

import (
	"time"

	"github.com/okian/goalcast/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithEnricher makes the worker fetch statistics for matches that carry none.
func WithEnricher(e Enricher) Option {
	return func(w *InMemoryWorker) {
		w.enricher = e
	}
}

// WithStatisticsTimeout bounds each statistics request. Zero leaves only the
// batch deadline in force.
func WithStatisticsTimeout(d time.Duration) Option {
	return func(w *InMemoryWorker) {
		if d > 0 {
			w.statsWait = d
		}
	}
}
