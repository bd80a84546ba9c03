package site

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSiteHandler(t *testing.T) {
	Convey("Given a router with the dashboard registered", t, func() {
		r := chi.NewRouter()
		Register(r)

		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return w
		}

		Convey("Then / serves the dashboard page", func() {
			w := get("/")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
			So(w.Body.String(), ShouldContainSubstring, `id="matches"`)
			So(w.Body.String(), ShouldContainSubstring, `id="fixtures"`)
		})

		Convey("Then assets are served", func() {
			w := get("/assets/app.js")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "/api/matches")
			So(w.Body.String(), ShouldContainSubstring, "/api/fixtures")
		})

		Convey("Then unknown assets are 404", func() {
			So(get("/assets/missing.js").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then other paths are not claimed", func() {
			So(get("/some-page").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSiteHandlerWithNilRouter(t *testing.T) {
	Convey("Given a nil router", t, func() {
		So(func() { Register(nil) }, ShouldPanicWith, ErrNilRouter)
	})
}
