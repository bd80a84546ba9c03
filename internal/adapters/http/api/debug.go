package api

import (
	"context"
	"net/http"
	"time"
)

// DebugHandler exposes a live probe of the upstream provider.
type DebugHandler struct {
	prober  Prober
	timeout time.Duration
}

// NewDebugHandler creates a new debug handler.
func NewDebugHandler(p Prober, timeout time.Duration) *DebugHandler {
	return &DebugHandler{prober: p, timeout: timeout}
}

// HandleDebug handles GET /api/debug. Upstream failures are reported in the
// body with status 200 so the dashboard can display them.
func (h *DebugHandler) HandleDebug(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	writeJSON(w, http.StatusOK, h.prober.Probe(ctx))
}
