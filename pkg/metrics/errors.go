package metrics

import "errors"

// ErrNoSamples is returned by Gather helpers when a metric family is absent.
var ErrNoSamples = errors.New("metrics: no samples for metric")
