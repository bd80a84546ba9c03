package notifier

import "errors"

// Sentinel kinds for notifier errors.
var (
	ErrNotConfigured = errors.New("telegram notifier not configured")
	ErrQueueFull     = errors.New("telegram send queue full")
)
