package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/okian/goalcast/internal/domain/model"
)

// MatchesResponse is the dashboard payload of GET /api/matches.
type MatchesResponse struct {
	Matches       []model.Prediction       `json:"matches"`
	Notifications []model.NotificationView `json:"notifications"`
	Stats         map[string]interface{}   `json:"stats"`
	GeneratedAt   time.Time                `json:"generated_at"`
	Cycle         int64                    `json:"cycle"`
}

// PredictionsResponse is the payload of GET /api/predictions.
type PredictionsResponse struct {
	Predictions []model.Prediction `json:"predictions"`
	Count       int                `json:"count"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// MatchesHandler serves the ranked predictions of the current snapshot.
type MatchesHandler struct {
	snapshots     SnapshotSource
	notifications NotificationSource
	stats         StatsProvider
	maxLimit      int
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(s SnapshotSource, n NotificationSource, st StatsProvider, maxLimit int) *MatchesHandler {
	return &MatchesHandler{snapshots: s, notifications: n, stats: st, maxLimit: maxLimit}
}

// HandleMatches handles GET /api/matches.
func (h *MatchesHandler) HandleMatches(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_matches"
	snap, err := h.snapshots.Snapshot(r.Context())
	if err != nil {
		writeError(w, WrapKind(op, ErrUnavailable, err))
		return
	}
	writeJSON(w, http.StatusOK, MatchesResponse{
		Matches:       nonNil(snap.Predictions),
		Notifications: h.notifications.Notifications(),
		Stats:         h.stats.GetStats(),
		GeneratedAt:   snap.GeneratedAt,
		Cycle:         snap.Cycle,
	})
}

// HandlePredictions handles GET /api/predictions?limit=N. Without limit
// every prediction is returned.
func (h *MatchesHandler) HandlePredictions(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_predictions"
	n := -1
	if s := strings.TrimSpace(r.URL.Query().Get("limit")); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			writeError(w, WrapKind(op, ErrBadRequest, errors.New("limit must be a positive integer")))
			return
		}
		if v > h.maxLimit {
			writeError(w, WrapKind(op, ErrBadRequest, errors.New("limit exceeds "+strconv.Itoa(h.maxLimit))))
			return
		}
		n = v
	}

	snap, err := h.snapshots.Snapshot(r.Context())
	if err != nil {
		writeError(w, WrapKind(op, ErrUnavailable, err))
		return
	}
	preds := nonNil(snap.Predictions)
	if n >= 0 && n < len(preds) {
		preds = preds[:n]
	}
	writeJSON(w, http.StatusOK, PredictionsResponse{Predictions: preds, Count: len(preds), GeneratedAt: snap.GeneratedAt})
}

// HandlePrediction handles GET /api/predictions/{id}.
func (h *MatchesHandler) HandlePrediction(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_prediction"
	id := chi.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		writeError(w, NewKind(op, ErrBadRequest))
		return
	}
	snap, err := h.snapshots.Snapshot(r.Context())
	if err != nil {
		writeError(w, WrapKind(op, ErrUnavailable, err))
		return
	}
	for i := range snap.Predictions {
		if snap.Predictions[i].MatchID == id {
			writeJSON(w, http.StatusOK, snap.Predictions[i])
			return
		}
	}
	writeError(w, WrapKind(op, ErrNotFound, errors.New("match "+id)))
}

func nonNil(p []model.Prediction) []model.Prediction {
	if p == nil {
		return []model.Prediction{}
	}
	return p
}
