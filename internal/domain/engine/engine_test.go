package engine_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/goalcast/internal/domain/engine"
	"github.com/okian/goalcast/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func assertFinite(p model.Prediction) {
	So(finite(p.Intensity.LambdaHome), ShouldBeTrue)
	So(finite(p.Intensity.LambdaAway), ShouldBeTrue)
	So(finite(p.Intensity.TotalLambda), ShouldBeTrue)
	So(finite(p.BTTS), ShouldBeTrue)
	So(finite(p.Pressure.Score), ShouldBeTrue)
	So(finite(p.Tempo), ShouldBeTrue)
	for _, l := range p.Markets {
		So(finite(l.Over), ShouldBeTrue)
		So(finite(l.Under), ShouldBeTrue)
	}
}

func fullMatch() model.RawMatch {
	return model.RawMatch{
		ID:        "1001",
		HomeTeam:  "Arsenal",
		AwayTeam:  "Chelsea",
		HomeScore: model.N(0),
		AwayScore: model.N(0),
		Minute:    model.N(20),
		League:    "Premier League",
		Country:   "England",
		Status:    model.StatusLive,
		StartTime: 1700000000,
		Stats: &model.RawStats{
			XGHome:               model.N(0.9),
			XGAway:               model.N(0.2),
			ShotsOnTargetHome:    model.N(40),
			ShotsOnTargetAway:    model.N(0),
			DangerousAttacksHome: model.N(20),
			DangerousAttacksAway: model.N(3),
			TotalAttacksHome:     model.N(20),
			TotalAttacksAway:     model.N(10),
		},
	}
}

func TestEngine_ProcessMatch(t *testing.T) {
	Convey("Given an engine with canonical parameters", t, func() {
		e := engine.New(engine.DefaultParams())

		Convey("When a record carries no statistics at all", func() {
			p, ok := e.ProcessMatch(model.RawMatch{ID: "42", HomeTeam: "A", AwayTeam: "B"})

			Convey("Then a fully defaulted prediction is returned", func() {
				So(ok, ShouldBeTrue)
				So(p.MatchID, ShouldEqual, "42")
				So(p.Score, ShouldEqual, "0-0")
				So(p.Minute, ShouldEqual, 45)
				So(p.StatsAvailable, ShouldBeFalse)
				So(p.Status, ShouldEqual, model.StatusLive)
				So(p.Kickoff, ShouldEqual, "")
				So(p.Flag, ShouldEqual, "⚽")
				So(p.Markets, ShouldHaveLength, 6)
				So(p.Outcome.HomeWin+p.Outcome.Draw+p.Outcome.AwayWin, ShouldEqual, 100)
				So(p.Alert.Reasons, ShouldNotBeNil)
				assertFinite(p)
			})
		})

		Convey("When every numeric field is garbage", func() {
			raw := model.RawMatch{
				ID:        "x",
				HomeScore: model.N(math.NaN()),
				AwayScore: model.N(-3),
				Minute:    model.N(math.Inf(1)),
				Stats: &model.RawStats{
					XGHome:           model.N(math.Inf(1)),
					XGAway:           model.N(-1),
					TotalAttacksHome: model.N(0),
					TotalAttacksAway: model.N(math.NaN()),
				},
			}
			p, ok := e.ProcessMatch(raw)

			So(ok, ShouldBeTrue)
			So(p.Score, ShouldEqual, "0-0")
			assertFinite(p)
		})

		Convey("When it is goalless and early under heavy pressure", func() {
			p, ok := e.ProcessMatch(fullMatch())

			Convey("Then the early override drives the low lines", func() {
				So(ok, ShouldBeTrue)
				So(p.Pressure.High, ShouldBeTrue)
				o05, _ := p.Markets.Over(0.5)
				o15, _ := p.Markets.Over(1.5)
				So(o05, ShouldAlmostEqual, 0.88, 1e-12)
				So(o15, ShouldAlmostEqual, 0.78, 1e-12)
			})

			Convey("And the recommendation and confidence follow the best market", func() {
				So(p.Recommendation, ShouldNotBeNil)
				So(p.Recommendation.Market, ShouldEqual, "over 0.5")
				So(p.Confidence, ShouldEqual, int(math.Round(80*0.88+20*20.0/90)))
			})

			Convey("And display fields are derived", func() {
				So(p.LeagueIntensity, ShouldEqual, 20+40)
				So(p.Kickoff, ShouldEqual, "03:13")
				So(p.Flag, ShouldNotEqual, "⚽")
			})
		})

		Convey("When the same record is processed twice", func() {
			a, _ := e.ProcessMatch(fullMatch())
			b, _ := e.ProcessMatch(fullMatch())
			So(a, ShouldResemble, b)
		})

		Convey("When statistics are absent the confidence is discounted", func() {
			withStats := fullMatch()
			without := fullMatch()
			without.Stats = nil
			a, _ := e.ProcessMatch(withStats)
			b, _ := e.ProcessMatch(without)
			So(b.StatsAvailable, ShouldBeFalse)
			So(b.Confidence, ShouldBeLessThan, a.Confidence)
		})

		Convey("When the match is at half time", func() {
			raw := fullMatch()
			raw.Status = model.StatusHalfTime
			p, _ := e.ProcessMatch(raw)
			So(p.Status, ShouldEqual, model.StatusHalfTime)
		})
	})

	Convey("Given an engine with the validity gate enabled", t, func() {
		params := engine.DefaultParams()
		params.Features.Gate.Enabled = true
		e := engine.New(params)

		Convey("When statistics are missing", func() {
			_, ok := e.ProcessMatch(model.RawMatch{ID: "1"})
			_, err := e.Process(model.RawMatch{ID: "1"})

			Convey("Then the match is rejected", func() {
				So(ok, ShouldBeFalse)
				So(errors.Is(err, engine.ErrRejected), ShouldBeTrue)
			})
		})
	})

	Convey("Given an engine that was never constructed", t, func() {
		var e engine.Engine

		Convey("When processing panics internally", func() {
			_, err := e.Process(fullMatch())

			Convey("Then the panic is reported as an error", func() {
				So(errors.Is(err, engine.ErrPanic), ShouldBeTrue)
			})
		})
	})
}

func TestEngine_RankAndFilter(t *testing.T) {
	Convey("Given predictions with mixed confidence", t, func() {
		params := engine.DefaultParams()
		params.MaxMatches = 3
		e := engine.New(params)
		in := []model.Prediction{
			{MatchID: "b", Confidence: 70},
			{MatchID: "a", Confidence: 70},
			{MatchID: "c", Confidence: 90},
			{MatchID: "d", Confidence: 10},
		}

		Convey("When ranking", func() {
			out := e.RankAndFilter(in)

			Convey("Then they are sorted by confidence then id and capped", func() {
				So(out, ShouldHaveLength, 3)
				So(out[0].MatchID, ShouldEqual, "c")
				So(out[1].MatchID, ShouldEqual, "a")
				So(out[2].MatchID, ShouldEqual, "b")
			})

			Convey("And the input is left untouched", func() {
				So(in[0].MatchID, ShouldEqual, "b")
				So(in[3].MatchID, ShouldEqual, "d")
			})
		})

		Convey("When ranking nothing", func() {
			So(e.RankAndFilter(nil), ShouldBeEmpty)
		})
	})
}

func TestLabels(t *testing.T) {
	Convey("Known countries get flags and kickoff renders in PKT", t, func() {
		So(engine.Flag("Germany"), ShouldEqual, "\U0001F1E9\U0001F1EA")
		So(engine.Flag("Atlantis"), ShouldEqual, "⚽")
		So(engine.Kickoff(0), ShouldEqual, "")
		So(engine.Kickoff(1700000000), ShouldEqual, "03:13")
	})
}
