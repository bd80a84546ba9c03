package cache

import "errors"

// Sentinel kinds for cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
	ErrNilValue  = errors.New("nil snapshot")
	ErrBackend   = errors.New("cache backend failure")
)
