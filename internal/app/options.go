package service

import (
	"time"

	"github.com/okian/goalcast/internal/adapters/cache"
	"github.com/okian/goalcast/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCache replaces the snapshot store. The default is an in-process store.
func WithCache(c cache.Store) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithPublisher adds a receiver for every new snapshot.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publishers = append(s.publishers, p)
		}
	}
}

// WithSink adds a receiver for new notification entries.
func WithSink(k Sink) Option {
	return func(s *Service) {
		if k != nil {
			s.sinks = append(s.sinks, k)
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
