package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/goalcast/internal/adapters/http/api"
	"github.com/okian/goalcast/internal/adapters/upstream/sofascore"
	"github.com/okian/goalcast/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type mockDependencies struct {
	snap    *model.Snapshot
	snapErr error
	notes   []model.NotificationView
	fixes   []model.Fixture
	fixErr  error
	stats   map[string]interface{}
	probe   sofascore.ProbeResult
}

func (m *mockDependencies) Snapshot(context.Context) (*model.Snapshot, error) {
	return m.snap, m.snapErr
}

func (m *mockDependencies) Notifications() []model.NotificationView { return m.notes }

func (m *mockDependencies) Fixtures(context.Context) ([]model.Fixture, error) {
	return m.fixes, m.fixErr
}

func (m *mockDependencies) GetStats() map[string]interface{} { return m.stats }

func (m *mockDependencies) Probe(context.Context) sofascore.ProbeResult { return m.probe }

var generated = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newDeps() *mockDependencies {
	return &mockDependencies{
		snap: &model.Snapshot{
			Cycle:       7,
			GeneratedAt: generated,
			Predictions: []model.Prediction{
				{MatchID: "1001", HomeTeam: "Arsenal", Confidence: 90},
				{MatchID: "1002", HomeTeam: "Bayern", Confidence: 80},
				{MatchID: "1003", HomeTeam: "Inter", Confidence: 70},
			},
		},
		notes: []model.NotificationView{{Notification: model.Notification{ID: "n1", MatchID: "1001"}, Fresh: true}},
		fixes: []model.Fixture{{ID: "2001", HomeTeam: "Bayern", Status: model.StatusScheduled, Kickoff: "03:13"}},
		stats: map[string]interface{}{"cycles": 7},
		probe: sofascore.ProbeResult{Status: 200, Count: 3},
	}
}

func serve(deps api.Dependencies, method, target string) *httptest.ResponseRecorder {
	r := api.NewRouter([]string{"*"})
	api.NewServer(deps, api.WithMaxLimit(50)).Register(r)
	req := httptest.NewRequest(method, target, http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var v T
	_ = json.Unmarshal(w.Body.Bytes(), &v)
	return v
}

func TestServer_Matches(t *testing.T) {
	Convey("Given an API server with a snapshot", t, func() {
		deps := newDeps()

		Convey("When requesting /api/matches", func() {
			w := serve(deps, http.MethodGet, "/api/matches")
			body := decode[api.MatchesResponse](w)

			Convey("Then the dashboard payload is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
				So(body.Matches, ShouldHaveLength, 3)
				So(body.Notifications, ShouldHaveLength, 1)
				So(body.Cycle, ShouldEqual, int64(7))
				So(body.GeneratedAt.Equal(generated), ShouldBeTrue)
			})
		})

		Convey("When the snapshot is empty", func() {
			deps.snap = &model.Snapshot{}
			w := serve(deps, http.MethodGet, "/api/matches")

			Convey("Then matches is an empty list, not null", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"matches":[]`)
			})
		})

		Convey("When the snapshot source fails", func() {
			deps.snapErr = errors.New("redis down")
			w := serve(deps, http.MethodGet, "/api/matches")

			Convey("Then 503 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(decode[map[string]string](w)["code"], ShouldEqual, "unavailable")
			})
		})
	})
}

func TestServer_Predictions(t *testing.T) {
	Convey("Given an API server with a snapshot", t, func() {
		deps := newDeps()

		Convey("Then all predictions are returned without limit", func() {
			w := serve(deps, http.MethodGet, "/api/predictions")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[api.PredictionsResponse](w).Count, ShouldEqual, 3)
		})

		Convey("Then limit truncates in rank order", func() {
			w := serve(deps, http.MethodGet, "/api/predictions?limit=2")
			body := decode[api.PredictionsResponse](w)
			So(body.Count, ShouldEqual, 2)
			So(body.Predictions[1].MatchID, ShouldEqual, "1002")
		})

		Convey("Then invalid limits are rejected", func() {
			for _, q := range []string{"0", "-1", "abc", "51"} {
				w := serve(deps, http.MethodGet, "/api/predictions?limit="+q)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("Then one prediction is found by id", func() {
			w := serve(deps, http.MethodGet, "/api/predictions/1002")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[model.Prediction](w).HomeTeam, ShouldEqual, "Bayern")
		})

		Convey("Then an unknown id is 404", func() {
			w := serve(deps, http.MethodGet, "/api/predictions/9999")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decode[map[string]string](w)["code"], ShouldEqual, "not_found")
		})
	})
}

func TestServer_Misc(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := newDeps()

		Convey("Then notifications are listed", func() {
			w := serve(deps, http.MethodGet, "/api/notifications")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[api.NotificationsResponse](w).Count, ShouldEqual, 1)
		})

		Convey("Then an empty board is an empty list", func() {
			deps.notes = nil
			w := serve(deps, http.MethodGet, "/api/notifications")
			So(w.Body.String(), ShouldContainSubstring, `"notifications":[]`)
		})

		Convey("Then stats are served", func() {
			w := serve(deps, http.MethodGet, "/api/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decode[map[string]any](w)
			So(body["cycles"], ShouldEqual, 7.0)
			totals, ok := body["totals"].(map[string]any)
			So(ok, ShouldBeTrue)
			So(totals, ShouldContainKey, "matchesProcessed")
			So(totals, ShouldContainKey, "refreshCycles")
		})

		Convey("Then the probe result is served", func() {
			w := serve(deps, http.MethodGet, "/api/debug")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[sofascore.ProbeResult](w).Count, ShouldEqual, 3)
		})

		Convey("Then /healthz exposes Prometheus metrics", func() {
			_ = serve(deps, http.MethodGet, "/api/stats")
			w := serve(deps, http.MethodGet, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "goalcast_")
		})

		Convey("Then unknown routes are 404 and wrong methods 405", func() {
			So(serve(deps, http.MethodGet, "/api/unknown").Code, ShouldEqual, http.StatusNotFound)
			So(serve(deps, http.MethodPost, "/api/matches").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("Then CORS preflight is answered", func() {
			r := api.NewRouter([]string{"*"})
			api.NewServer(deps).Register(r)
			req := httptest.NewRequest(http.MethodOptions, "/api/matches", http.NoBody)
			req.Header.Set("Origin", "https://example.org")
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
		})
	})
}

func TestServer_Fixtures(t *testing.T) {
	Convey("Given an API server with upcoming fixtures", t, func() {
		deps := newDeps()

		Convey("When requesting /api/fixtures", func() {
			w := serve(deps, http.MethodGet, "/api/fixtures")
			body := decode[api.FixturesResponse](w)

			Convey("Then the fixtures are listed without predictions", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(body.Count, ShouldEqual, 1)
				So(body.Fixtures[0].ID, ShouldEqual, "2001")
				So(body.Fixtures[0].Status, ShouldEqual, model.StatusScheduled)
				So(w.Body.String(), ShouldNotContainSubstring, "confidence")
			})
		})

		Convey("When there are none", func() {
			deps.fixes = nil
			w := serve(deps, http.MethodGet, "/api/fixtures")

			Convey("Then an empty array is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"fixtures":[]`)
			})
		})

		Convey("When the provider is unavailable", func() {
			deps.fixErr = errors.New("live matches unavailable: HTTP 403")
			w := serve(deps, http.MethodGet, "/api/fixtures")

			Convey("Then 503 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(decode[map[string]string](w)["code"], ShouldEqual, "unavailable")
			})
		})
	})
}

func TestOpError(t *testing.T) {
	Convey("Given wrapped API errors", t, func() {
		cause := errors.New("boom")

		Convey("Then kinds and causes both match", func() {
			err := api.WrapKind("op", api.ErrNotFound, cause)
			So(errors.Is(err, api.ErrNotFound), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "op: not found: boom")
		})

		Convey("Then NewKind has no cause", func() {
			err := api.NewKind("op", api.ErrBadRequest)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "op: bad request")
		})

		Convey("Then Wrap marks internal errors and keeps nil", func() {
			So(errors.Is(api.Wrap("op", cause), api.ErrInternal), ShouldBeTrue)
			So(api.Wrap("op", nil), ShouldBeNil)
		})
	})
}
