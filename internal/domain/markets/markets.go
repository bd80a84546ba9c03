// Package markets estimates goal intensities and over/under probabilities.
package markets

import (
	"fmt"
	"math"

	"github.com/okian/goalcast/internal/domain/model"
	"github.com/okian/goalcast/internal/domain/poisson"
)

// Regulation length in minutes.
const fullTime = 90.0

// Params configures intensity estimation and the over/under adjustments.
type Params struct {
	Lines []float64 `koanf:"lines"`

	XGPer90Cap        float64 `koanf:"xg_per_90_cap"`
	MinElapsedMinutes float64 `koanf:"min_elapsed_minutes"`
	MinRemaining      float64 `koanf:"min_remaining_minutes"`
	ShotBoostPerShot  float64 `koanf:"shot_boost_per_shot"`
	ShotBoostCap      float64 `koanf:"shot_boost_cap"`
	MaxLambda         float64 `koanf:"max_lambda"`

	PoissonWeight float64 `koanf:"poisson_weight"`
	TempoWeight   float64 `koanf:"tempo_weight"`
	PressureBoost float64 `koanf:"pressure_boost"`
	BoostMaxLine  float64 `koanf:"boost_max_line"`
	EarlyMinute   int     `koanf:"early_minute"`
	EarlyPressure float64 `koanf:"early_pressure"`
	EarlyOver05   float64 `koanf:"early_over_05"`
	EarlyOver15   float64 `koanf:"early_over_15"`
	Floor         float64 `koanf:"floor"`
	Ceiling       float64 `koanf:"ceiling"`
}

// DefaultParams returns the canonical market parameters.
func DefaultParams() Params {
	return Params{
		Lines:             []float64{0.5, 1.5, 2.5, 3.5, 4.5, 5.5},
		XGPer90Cap:        3.0,
		MinElapsedMinutes: 1,
		MinRemaining:      3,
		ShotBoostPerShot:  0.04,
		ShotBoostCap:      1.5,
		MaxLambda:         6,
		PoissonWeight:     0.70,
		TempoWeight:       0.02,
		PressureBoost:     0.15,
		BoostMaxLine:      1.5,
		EarlyMinute:       30,
		EarlyPressure:     15,
		EarlyOver05:       0.88,
		EarlyOver15:       0.78,
		Floor:             0.05,
		Ceiling:           0.95,
	}
}

// Input is everything the over/under calculation looks at.
type Input struct {
	Intensity model.GoalIntensity
	Goals     int
	Minute    int
	Pressure  model.PressureIndex
	Tempo     float64
}

// Calculator computes intensities, market lines and BTTS.
type Calculator struct {
	p     Params
	table *poisson.Table
}

// New returns a Calculator backed by table. A nil table is built with room
// for two sides at the intensity cap.
func New(p Params, table *poisson.Table) *Calculator {
	if len(p.Lines) == 0 {
		p.Lines = DefaultParams().Lines
	}
	if table == nil {
		table = poisson.NewTable(poisson.WithMaxLambda(2 * p.MaxLambda))
	}
	return &Calculator{p: p, table: table}
}

// Intensity estimates the expected remaining goals for each side.
func (c *Calculator) Intensity(f model.MatchFeatures) model.GoalIntensity {
	home := c.side(f.XGHome, f.ShotsOnTargetHome, f.Minute)
	away := c.side(f.XGAway, f.ShotsOnTargetAway, f.Minute)
	return model.GoalIntensity{
		LambdaHome:  home,
		LambdaAway:  away,
		TotalLambda: home + away,
	}
}

func (c *Calculator) side(xg, shots float64, minute int) float64 {
	elapsed := math.Max(float64(minute), c.p.MinElapsedMinutes)
	perNinety := math.Min(xg/(elapsed/fullTime), c.p.XGPer90Cap)
	remaining := math.Max(fullTime-float64(minute), c.p.MinRemaining) / fullTime
	boost := math.Min(1+c.p.ShotBoostPerShot*shots, c.p.ShotBoostCap)
	return clamp(perNinety*remaining*boost, 0, c.p.MaxLambda)
}

// Markets returns one entry per configured line in ascending order. Lines
// already passed are settled at the ceiling.
func (c *Calculator) Markets(in Input) model.MarketProbabilities {
	out := make(model.MarketProbabilities, 0, len(c.p.Lines))
	for _, line := range c.p.Lines {
		if float64(in.Goals) > line {
			out = append(out, model.MarketLine{
				Line:    line,
				Over:    c.p.Ceiling,
				Under:   1 - c.p.Ceiling,
				Settled: true,
			})
			continue
		}
		over := c.over(in, line)
		out = append(out, model.MarketLine{Line: line, Over: over, Under: 1 - over})
	}
	return out
}

func (c *Calculator) over(in Input, line float64) float64 {
	lambda := in.Intensity.TotalLambda
	needed := int(math.Floor(line)) - in.Goals
	poissonOver := 1 - c.table.CDF(lambda, needed)
	heuristic := logistic(float64(in.Goals) + lambda + c.p.TempoWeight*in.Tempo - line)
	p := c.p.PoissonWeight*poissonOver + (1-c.p.PoissonWeight)*heuristic

	if in.Pressure.High && line <= c.p.BoostMaxLine {
		p = math.Min(p+c.p.PressureBoost, c.p.Ceiling)
	}
	if in.Goals == 0 && in.Minute < c.p.EarlyMinute && in.Pressure.Score > c.p.EarlyPressure {
		switch line {
		case 0.5:
			p = c.p.EarlyOver05
		case 1.5:
			p = c.p.EarlyOver15
		}
	}
	return clamp(p, c.p.Floor, c.p.Ceiling)
}

// BTTS is the probability both teams score. A side that already scored counts as certain.
func (c *Calculator) BTTS(f model.MatchFeatures, in model.GoalIntensity) float64 {
	home := 1.0
	if f.HomeScore == 0 {
		home = 1 - math.Exp(-in.LambdaHome)
	}
	away := 1.0
	if f.AwayScore == 0 {
		away = 1 - math.Exp(-in.LambdaAway)
	}
	return clamp(home*away, 0, 1)
}

// Label renders a line as a market name, e.g. "over 2.5".
func Label(line float64) string {
	return fmt.Sprintf("over %.1f", line)
}

func logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
