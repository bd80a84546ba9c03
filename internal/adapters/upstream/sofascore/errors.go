package sofascore

import "errors"

// Sentinel kinds for provider errors.
var (
	ErrUpstream       = errors.New("upstream request failed")
	ErrUpstreamStatus = errors.New("upstream returned unexpected status")
	ErrDecode         = errors.New("upstream payload could not be decoded")
)
