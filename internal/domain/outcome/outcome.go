// Package outcome computes home/draw/away percentages from goal intensities
// and the current match state.
package outcome

import (
	"math"

	"github.com/okian/goalcast/internal/domain/model"
)

// Params holds the multipliers applied to the base rates, in order.
type Params struct {
	TwoGoalLeader   float64 `koanf:"two_goal_leader"`
	TwoGoalTrailer  float64 `koanf:"two_goal_trailer"`
	TwoGoalDraw     float64 `koanf:"two_goal_draw"`
	OneGoalLeader   float64 `koanf:"one_goal_leader"`
	OneGoalTrailer  float64 `koanf:"one_goal_trailer"`
	OneGoalDraw     float64 `koanf:"one_goal_draw"`
	HighGoalsTotal  int     `koanf:"high_goals_total"`
	HighGoalsDraw   float64 `koanf:"high_goals_draw"`
	HighGoalsLeader float64 `koanf:"high_goals_leader"`
	LateMinute      int     `koanf:"late_minute"`
	LateDraw        float64 `koanf:"late_draw"`
	LateWin         float64 `koanf:"late_win"`
	HomeFloor       int     `koanf:"home_floor"`
	DrawFloor       int     `koanf:"draw_floor"`
	AwayFloor       int     `koanf:"away_floor"`
}

// DefaultParams returns the canonical outcome parameters.
func DefaultParams() Params {
	return Params{
		TwoGoalLeader:   3.5,
		TwoGoalTrailer:  0.2,
		TwoGoalDraw:     0.15,
		OneGoalLeader:   1.8,
		OneGoalTrailer:  0.5,
		OneGoalDraw:     0.7,
		HighGoalsTotal:  3,
		HighGoalsDraw:   0.25,
		HighGoalsLeader: 2.0,
		LateMinute:      75,
		LateDraw:        1.5,
		LateWin:         0.9,
		HomeFloor:       5,
		DrawFloor:       8,
		AwayFloor:       5,
	}
}

// Calculator computes OutcomeProbabilities.
type Calculator struct {
	p Params
}

// New returns a Calculator. Floors that cannot fit inside 100 fall back to the defaults.
func New(p Params) *Calculator {
	if p.HomeFloor < 0 || p.DrawFloor < 0 || p.AwayFloor < 0 || p.HomeFloor+p.DrawFloor+p.AwayFloor > 100 {
		d := DefaultParams()
		p.HomeFloor, p.DrawFloor, p.AwayFloor = d.HomeFloor, d.DrawFloor, d.AwayFloor
	}
	return &Calculator{p: p}
}

// Base returns the unadjusted rates as percentages.
func Base(in model.GoalIntensity) (home, draw, away float64) {
	home = (1 - math.Exp(-nonNeg(in.LambdaHome))) * 100
	away = (1 - math.Exp(-nonNeg(in.LambdaAway))) * 100
	draw = math.Exp(-nonNeg(in.LambdaHome)-nonNeg(in.LambdaAway)) * 100
	return home, draw, away
}

// Compute applies the multipliers, normalises to 100 and reconciles the floors.
// The result always sums to exactly 100 with every floor honoured.
func (c *Calculator) Compute(f model.MatchFeatures, in model.GoalIntensity) model.OutcomeProbabilities {
	home, draw, away := Base(in)
	diff := f.HomeScore - f.AwayScore

	switch {
	case diff >= 2:
		home, away, draw = home*c.p.TwoGoalLeader, away*c.p.TwoGoalTrailer, draw*c.p.TwoGoalDraw
	case diff <= -2:
		away, home, draw = away*c.p.TwoGoalLeader, home*c.p.TwoGoalTrailer, draw*c.p.TwoGoalDraw
	case diff == 1:
		home, away, draw = home*c.p.OneGoalLeader, away*c.p.OneGoalTrailer, draw*c.p.OneGoalDraw
	case diff == -1:
		away, home, draw = away*c.p.OneGoalLeader, home*c.p.OneGoalTrailer, draw*c.p.OneGoalDraw
	}

	if f.TotalGoals() >= c.p.HighGoalsTotal {
		draw *= c.p.HighGoalsDraw
		switch {
		case diff > 0:
			home *= c.p.HighGoalsLeader
		case diff < 0:
			away *= c.p.HighGoalsLeader
		}
	}

	if f.Minute > c.p.LateMinute {
		draw *= c.p.LateDraw
		home *= c.p.LateWin
		away *= c.p.LateWin
	}

	return c.reconcile(normalise(home, draw, away))
}

// normalise scales to percentages. Home and draw are rounded and away takes the remainder.
func normalise(home, draw, away float64) model.OutcomeProbabilities {
	sum := home + draw + away
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return model.OutcomeProbabilities{HomeWin: 33, Draw: 34, AwayWin: 33}
	}
	h := int(math.Round(home / sum * 100))
	d := int(math.Round(draw / sum * 100))
	return model.OutcomeProbabilities{HomeWin: h, Draw: d, AwayWin: 100 - h - d}
}

// reconcile raises every outcome to its floor, then takes one point at a time
// from the largest outcome still above its floor until the sum is 100.
// Ties go home, then draw, then away.
func (c *Calculator) reconcile(o model.OutcomeProbabilities) model.OutcomeProbabilities {
	vals := [3]int{o.HomeWin, o.Draw, o.AwayWin}
	floors := [3]int{c.p.HomeFloor, c.p.DrawFloor, c.p.AwayFloor}
	for i := range vals {
		if vals[i] < floors[i] {
			vals[i] = floors[i]
		}
	}
	for vals[0]+vals[1]+vals[2] > 100 {
		pick := -1
		for i := range vals {
			if vals[i] > floors[i] && (pick < 0 || vals[i] > vals[pick]) {
				pick = i
			}
		}
		if pick < 0 {
			break
		}
		vals[pick]--
	}
	return model.OutcomeProbabilities{HomeWin: vals[0], Draw: vals[1], AwayWin: vals[2]}
}

func nonNeg(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
