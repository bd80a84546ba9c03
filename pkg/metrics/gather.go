package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Sum adds up every sample of the named family in the global registry.
// Counters and gauges contribute their value, histograms their sample count.
func Sum(family string) (float64, error) {
	return sumFrom(customRegistry, family)
}

func sumFrom(g prometheus.Gatherer, family string) (float64, error) {
	families, err := g.Gather()
	if err != nil {
		return 0, fmt.Errorf("gather: %w", err)
	}
	for _, mf := range families {
		if mf.GetName() != family {
			continue
		}
		total := 0.0
		for _, m := range mf.GetMetric() {
			total += sample(m)
		}
		return total, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrNoSamples, family)
}

func sample(m *dto.Metric) float64 {
	switch {
	case m.GetCounter() != nil:
		return m.GetCounter().GetValue()
	case m.GetGauge() != nil:
		return m.GetGauge().GetValue()
	case m.GetHistogram() != nil:
		return float64(m.GetHistogram().GetSampleCount())
	}
	return 0
}
