package engine

import "errors"

var (
	// ErrRejected is returned when the validity gate refuses a match.
	ErrRejected = errors.New("engine: match rejected by validity gate")
	// ErrPanic is returned when processing a single match panicked.
	ErrPanic = errors.New("engine: match processing panicked")
)
