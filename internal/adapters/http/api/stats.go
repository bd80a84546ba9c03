package api

import (
	"net/http"

	"github.com/okian/goalcast/pkg/metrics"
)

// StatsProvider reports the service state.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// totalFamilies are the process-lifetime counters added to /api/stats.
var totalFamilies = map[string]string{ //nolint:gochecknoglobals // fixed lookup table
	"refreshCycles":           "goalcast_engine_refresh_cycles_total",
	"matchesProcessed":        "goalcast_engine_matches_processed_total",
	"matchesRejected":         "goalcast_engine_matches_rejected_total",
	"matchesFailed":           "goalcast_engine_matches_failed_total",
	"upstreamRequests":        "goalcast_engine_upstream_requests_total",
	"notificationsPushed":     "goalcast_engine_notifications_pushed_total",
	"notificationsSuppressed": "goalcast_engine_notifications_suppressed_total",
}

// StatsHandler serves the service state plus lifetime counters.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /api/stats. Counters never incremented report 0.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	stats := h.statsProvider.GetStats()
	out := make(map[string]interface{}, len(stats)+1)
	for k, v := range stats {
		out[k] = v
	}
	totals := make(map[string]float64, len(totalFamilies))
	for key, family := range totalFamilies {
		v, err := metrics.Sum(family)
		if err != nil {
			v = 0
		}
		totals[key] = v
	}
	out["totals"] = totals
	writeJSON(w, http.StatusOK, out)
}
