package replay_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/goalcast/internal/adapters/upstream/sofascore"
	"github.com/okian/goalcast/internal/domain/engine"
	"github.com/okian/goalcast/internal/replay"
	"github.com/okian/goalcast/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

const live = `{"events":[
 {"id":901,"homeTeam":{"name":"Arsenal"},"awayTeam":{"name":"Chelsea"},
  "homeScore":{"current":1},"awayScore":{"current":0},
  "status":{"code":7,"type":"inprogress"},
  "tournament":{"category":{"name":"England","country":{"name":"England"}},"uniqueTournament":{"name":"Premier League"}},
  "startTimestamp":1699997000,"time":{"currentPeriodStartTimestamp":1700002370}},
 {"id":902,"homeTeam":{"name":"Bayern"},"awayTeam":{"name":"Dortmund"},
  "homeScore":{"current":2},"awayScore":{"current":2},
  "status":{"code":6,"type":"inprogress"},
  "tournament":{"category":{"name":"Germany"},"uniqueTournament":{"name":"Bundesliga"}},
  "startTimestamp":1700001000,"time":{"currentPeriodStartTimestamp":1700001200}}
]}`

const statsMap = `{"901":{"statistics":[{"period":"ALL","groups":[{"groupName":"Overview","statisticsItems":[
 {"name":"Expected goals","key":"expectedGoals","homeValue":1.4,"awayValue":0.6},
 {"name":"Shots on target","key":"shotsOnGoal","homeValue":6,"awayValue":3}]}]}]}}`

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestReplay(t *testing.T) {
	Convey("Given a saved live payload and statistics map", t, func() {
		dir := t.TempDir()
		cfg := &replay.Config{
			LiveFile:  write(t, dir, "live.json", live),
			StatsFile: write(t, dir, "stats.json", statsMap),
			Now:       time.Unix(1700003000, 0),
			Workers:   2,
		}

		Convey("When replaying with default parameters", func() {
			res, err := replay.Replay(context.Background(), cfg, engine.DefaultParams())

			Convey("Then every match is predicted and ranked", func() {
				So(err, ShouldBeNil)
				So(res.Stats.Fetched, ShouldEqual, 2)
				So(res.Stats.WithStats, ShouldEqual, 1)
				So(res.Stats.Processed, ShouldEqual, 2)
				So(res.Predictions, ShouldHaveLength, 2)
				So(res.Predictions[0].Confidence, ShouldBeGreaterThanOrEqualTo, res.Predictions[1].Confidence)

				byID := map[string]bool{}
				for _, p := range res.Predictions {
					byID[p.MatchID] = p.StatsAvailable
				}
				So(byID["901"], ShouldBeTrue)
				So(byID["902"], ShouldBeFalse)
			})
		})

		Convey("When only the best match is requested", func() {
			cfg.Top = 1
			res, err := replay.Replay(context.Background(), cfg, engine.DefaultParams())

			Convey("Then one prediction is served", func() {
				So(err, ShouldBeNil)
				So(res.Predictions, ShouldHaveLength, 1)
				So(res.Stats.Served, ShouldEqual, 1)
			})
		})

		Convey("When the validity gate is enabled", func() {
			p := engine.DefaultParams()
			p.Features.Gate.Enabled = true
			res, err := replay.Replay(context.Background(), cfg, p)

			Convey("Then the match without statistics is rejected", func() {
				So(err, ShouldBeNil)
				So(res.Stats.Rejected, ShouldBeGreaterThanOrEqualTo, 1)
				for _, p := range res.Predictions {
					So(p.MatchID, ShouldNotEqual, "902")
				}
			})
		})

		Convey("When writing a table", func() {
			var buf bytes.Buffer
			cfg.Out = &buf
			cfg.Format = replay.FormatTable
			So(replay.Run(context.Background(), cfg, engine.DefaultParams()), ShouldBeNil)

			Convey("Then each match is a row followed by the summary", func() {
				So(buf.String(), ShouldContainSubstring, "Arsenal vs Chelsea")
				So(buf.String(), ShouldContainSubstring, "Bayern vs Dortmund")
				So(buf.String(), ShouldContainSubstring, "fetched 2, with stats 1")
			})
		})

		Convey("When writing json", func() {
			var buf bytes.Buffer
			cfg.Out = &buf
			cfg.Format = replay.FormatJSON
			So(replay.Run(context.Background(), cfg, engine.DefaultParams()), ShouldBeNil)

			Convey("Then the output decodes back into the result", func() {
				var res replay.Result
				So(json.Unmarshal(buf.Bytes(), &res), ShouldBeNil)
				So(res.Predictions, ShouldHaveLength, 2)
				So(res.Stats.Fetched, ShouldEqual, 2)
			})
		})
	})

	Convey("Given broken input", t, func() {
		dir := t.TempDir()

		Convey("Then a missing live file is reported", func() {
			_, err := replay.Replay(context.Background(), &replay.Config{}, engine.DefaultParams())
			So(errors.Is(err, replay.ErrNoInput), ShouldBeTrue)

			_, err = replay.Replay(context.Background(), &replay.Config{LiveFile: filepath.Join(dir, "nope.json")}, engine.DefaultParams())
			So(err, ShouldNotBeNil)
		})

		Convey("Then a payload that is not json is a decode error", func() {
			cfg := &replay.Config{LiveFile: write(t, dir, "live.html", "<html>blocked</html>")}
			_, err := replay.Replay(context.Background(), cfg, engine.DefaultParams())
			So(errors.Is(err, sofascore.ErrDecode), ShouldBeTrue)
		})

		Convey("Then a malformed statistics map is reported", func() {
			cfg := &replay.Config{
				LiveFile:  write(t, dir, "live.json", live),
				StatsFile: write(t, dir, "stats.json", `[1,2]`),
			}
			_, err := replay.Replay(context.Background(), cfg, engine.DefaultParams())
			So(err, ShouldNotBeNil)
		})

		Convey("Then a cancelled context stops the replay", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			cfg := &replay.Config{LiveFile: write(t, dir, "live.json", live)}
			_, err := replay.Replay(ctx, cfg, engine.DefaultParams())
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}
