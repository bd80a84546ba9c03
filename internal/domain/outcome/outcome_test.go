package outcome_test

import (
	"math"
	"testing"

	"github.com/okian/goalcast/internal/domain/model"
	"github.com/okian/goalcast/internal/domain/outcome"
	. "github.com/smartystreets/goconvey/convey"
)

func sum(o model.OutcomeProbabilities) int { return o.HomeWin + o.Draw + o.AwayWin }

func TestCalculator_Compute(t *testing.T) {
	Convey("Given the canonical outcome calculator", t, func() {
		c := outcome.New(outcome.DefaultParams())

		Convey("When the home side leads 3-1 in the 80th minute", func() {
			o := c.Compute(
				model.MatchFeatures{HomeScore: 3, AwayScore: 1, Minute: 80},
				model.GoalIntensity{LambdaHome: 1.2, LambdaAway: 0.3, TotalLambda: 1.5},
			)

			Convey("Then home dominates and the other outcomes sit on their floors", func() {
				So(o.HomeWin, ShouldEqual, 87)
				So(o.Draw, ShouldEqual, 8)
				So(o.AwayWin, ShouldEqual, 5)
			})
		})

		Convey("When the away side leads by two", func() {
			o := c.Compute(
				model.MatchFeatures{HomeScore: 0, AwayScore: 2, Minute: 60},
				model.GoalIntensity{LambdaHome: 0.5, LambdaAway: 0.5, TotalLambda: 1},
			)

			Convey("Then the mirrored multipliers apply", func() {
				So(o.AwayWin, ShouldBeGreaterThan, o.HomeWin)
				So(o.AwayWin, ShouldBeGreaterThan, o.Draw)
				So(sum(o), ShouldEqual, 100)
			})
		})

		Convey("When the match is level with equal intensities", func() {
			o := c.Compute(
				model.MatchFeatures{Minute: 50},
				model.GoalIntensity{LambdaHome: 0.7, LambdaAway: 0.7, TotalLambda: 1.4},
			)

			Convey("Then home and away are within one point", func() {
				So(math.Abs(float64(o.HomeWin-o.AwayWin)), ShouldBeLessThanOrEqualTo, 1)
				So(sum(o), ShouldEqual, 100)
			})
		})

		Convey("When no goals can be expected", func() {
			o := c.Compute(model.MatchFeatures{Minute: 90}, model.GoalIntensity{})

			Convey("Then the draw takes everything above the win floors", func() {
				So(o, ShouldResemble, model.OutcomeProbabilities{HomeWin: 5, Draw: 90, AwayWin: 5})
			})
		})

		Convey("Across a grid of states", func() {
			lambdas := []float64{0, 0.05, 0.3, 1, 2.4, 6, math.NaN(), -1}
			for hs := 0; hs <= 4; hs++ {
				for as := 0; as <= 4; as++ {
					for _, minute := range []int{0, 30, 76, 95} {
						for _, lh := range lambdas {
							for _, la := range lambdas {
								o := c.Compute(
									model.MatchFeatures{HomeScore: hs, AwayScore: as, Minute: minute},
									model.GoalIntensity{LambdaHome: lh, LambdaAway: la, TotalLambda: lh + la},
								)
								So(sum(o), ShouldEqual, 100)
								So(o.HomeWin, ShouldBeGreaterThanOrEqualTo, 5)
								So(o.Draw, ShouldBeGreaterThanOrEqualTo, 8)
								So(o.AwayWin, ShouldBeGreaterThanOrEqualTo, 5)
							}
						}
					}
				}
			}
		})
	})
}

func TestBase(t *testing.T) {
	Convey("Home base never decreases as home intensity grows", t, func() {
		prev := -1.0
		for lh := 0.0; lh <= 6; lh += 0.05 {
			home, draw, away := outcome.Base(model.GoalIntensity{LambdaHome: lh, LambdaAway: 0.8})
			So(home, ShouldBeGreaterThanOrEqualTo, prev)
			So(draw, ShouldBeGreaterThan, 0)
			So(away, ShouldAlmostEqual, (1-math.Exp(-0.8))*100, 1e-9)
			prev = home
		}
	})
}

func TestNew_InvalidFloors(t *testing.T) {
	Convey("Floors that cannot fit in 100 fall back to the defaults", t, func() {
		p := outcome.DefaultParams()
		p.HomeFloor, p.DrawFloor, p.AwayFloor = 50, 50, 50
		o := outcome.New(p).Compute(model.MatchFeatures{Minute: 90}, model.GoalIntensity{})
		So(o, ShouldResemble, model.OutcomeProbabilities{HomeWin: 5, Draw: 90, AwayWin: 5})
	})
}
