// Package pressure derives attacking pressure, tempo and the dead-match signal.
package pressure

import (
	"math"

	"github.com/okian/goalcast/internal/domain/model"
)

// Params configures the pressure and tempo formulas.
type Params struct {
	HighThreshold   float64 `koanf:"high_threshold"`
	ShotsWeight     float64 `koanf:"shots_weight"`
	DangerousWeight float64 `koanf:"dangerous_weight"`
	DeadAfterMinute int     `koanf:"dead_after_minute"`
	DeadMaxShots    float64 `koanf:"dead_max_shots"`
	DeadMaxTempo    float64 `koanf:"dead_max_tempo"`
	DeadMaxLambda   float64 `koanf:"dead_max_lambda"`
}

// DefaultParams returns the canonical pressure parameters.
func DefaultParams() Params {
	return Params{
		HighThreshold:   0.7,
		ShotsWeight:     0.4,
		DangerousWeight: 0.3,
		DeadAfterMinute: 60,
		DeadMaxShots:    6,
		DeadMaxTempo:    8,
		DeadMaxLambda:   2.2,
	}
}

// Calculator computes pressure-derived metrics.
type Calculator struct {
	p Params
}

// New returns a Calculator.
func New(p Params) *Calculator {
	return &Calculator{p: p}
}

// Index averages the dangerous-attack ratio weighted by shots on target over both sides.
func (c *Calculator) Index(f model.MatchFeatures) model.PressureIndex {
	home := ratio(f.DangerousAttacksHome, f.TotalAttacksHome) * f.ShotsOnTargetHome
	away := ratio(f.DangerousAttacksAway, f.TotalAttacksAway) * f.ShotsOnTargetAway
	score := finite((home + away) / 2)
	return model.PressureIndex{
		Score: score,
		High:  score > c.p.HighThreshold,
	}
}

// Tempo is a weighted sum of shots on target and dangerous attacks.
func (c *Calculator) Tempo(f model.MatchFeatures) float64 {
	shots := f.ShotsOnTargetHome + f.ShotsOnTargetAway
	dangerous := f.DangerousAttacksHome + f.DangerousAttacksAway
	return finite(c.p.ShotsWeight*shots + c.p.DangerousWeight*dangerous)
}

// IsDead reports a late match where nothing is happening.
func (c *Calculator) IsDead(f model.MatchFeatures, tempo, totalLambda float64) bool {
	shots := f.ShotsOnTargetHome + f.ShotsOnTargetAway
	return f.Minute > c.p.DeadAfterMinute &&
		shots < c.p.DeadMaxShots &&
		tempo < c.p.DeadMaxTempo &&
		totalLambda < c.p.DeadMaxLambda
}

func ratio(num, den float64) float64 {
	if den <= 0 || math.IsNaN(den) || math.IsInf(den, 0) {
		return 0
	}
	return num / den
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
