package stream_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/okian/goalcast/internal/adapters/http/stream"
	"github.com/okian/goalcast/internal/domain/model"
	"github.com/okian/goalcast/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func dial(t *testing.T, srv *httptest.Server, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	h := http.Header{}
	if origin != "" {
		h.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), h)
}

func read(conn *websocket.Conn) (stream.Message, error) {
	var m stream.Message
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		return m, err
	}
	err = json.Unmarshal(b, &m)
	return m, err
}

func waitClients(h *stream.Hub, n int) {
	deadline := time.Now().Add(2 * time.Second)
	for h.Clients() != n && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub(t *testing.T) {
	Convey("Given a hub with a current snapshot", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		current := &model.Snapshot{Cycle: 1, Predictions: []model.Prediction{{MatchID: "1001"}}}
		hub := stream.NewHub(ctx, func(context.Context) (*model.Snapshot, error) { return current, nil }, []string{"*"})
		srv := httptest.NewServer(hub)
		defer srv.Close()

		conn, _, err := dial(t, srv, "")
		So(err, ShouldBeNil)
		defer func() { _ = conn.Close() }()

		Convey("Then the client receives the current snapshot on connect", func() {
			m, err := read(conn)
			So(err, ShouldBeNil)
			So(m.Type, ShouldEqual, stream.MessageTypeSnapshot)
			So(m.Data.Cycle, ShouldEqual, int64(1))
			So(m.Data.Predictions[0].MatchID, ShouldEqual, "1001")
		})

		Convey("Then published snapshots are pushed", func() {
			_, err := read(conn)
			So(err, ShouldBeNil)
			waitClients(hub, 1)
			So(hub.Clients(), ShouldEqual, 1)

			hub.Publish(&model.Snapshot{Cycle: 2})
			m, err := read(conn)
			So(err, ShouldBeNil)
			So(m.Data.Cycle, ShouldEqual, int64(2))
		})

		Convey("Then a disconnecting client is removed", func() {
			waitClients(hub, 1)
			_ = conn.Close()
			waitClients(hub, 0)
			So(hub.Clients(), ShouldEqual, 0)
		})
	})
}

func TestHub_Origins(t *testing.T) {
	Convey("Given a hub restricted to one origin", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		hub := stream.NewHub(ctx, nil, []string{"https://goalcast.example"})
		srv := httptest.NewServer(hub)
		defer srv.Close()

		Convey("Then an allowed origin connects", func() {
			conn, _, err := dial(t, srv, "https://goalcast.example")
			So(err, ShouldBeNil)
			_ = conn.Close()
		})

		Convey("Then a foreign origin is refused", func() {
			_, resp, err := dial(t, srv, "https://evil.example")
			So(err, ShouldNotBeNil)
			So(resp, ShouldNotBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusForbidden)
		})
	})
}

func TestHub_PublishNil(t *testing.T) {
	Convey("Publishing nil without clients is a no-op", t, func() {
		hub := stream.NewHub(context.Background(), nil, nil)
		So(func() { hub.Publish(nil) }, ShouldNotPanic)
		So(func() { hub.Publish(&model.Snapshot{}) }, ShouldNotPanic)
	})
}
