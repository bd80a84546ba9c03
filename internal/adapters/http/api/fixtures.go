package api

import (
	"context"
	"net/http"

	"github.com/okian/goalcast/internal/domain/model"
)

// FixturesSource lists upcoming matches.
type FixturesSource interface {
	Fixtures(ctx context.Context) ([]model.Fixture, error)
}

// FixturesResponse is the payload of GET /api/fixtures.
type FixturesResponse struct {
	Fixtures []model.Fixture `json:"fixtures"`
	Count    int             `json:"count"`
}

// FixturesHandler serves upcoming matches. They carry no predictions.
type FixturesHandler struct {
	source FixturesSource
}

// NewFixturesHandler creates a new fixtures handler.
func NewFixturesHandler(source FixturesSource) *FixturesHandler {
	return &FixturesHandler{source: source}
}

// HandleFixtures handles GET /api/fixtures, earliest kickoff first.
func (h *FixturesHandler) HandleFixtures(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_fixtures"
	list, err := h.source.Fixtures(r.Context())
	if err != nil {
		writeError(w, WrapKind(op, ErrUnavailable, err))
		return
	}
	if list == nil {
		list = []model.Fixture{}
	}
	writeJSON(w, http.StatusOK, FixturesResponse{Fixtures: list, Count: len(list)})
}
