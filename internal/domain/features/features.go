// Package features turns untrusted provider records into validated match features.
package features

import (
	"math"

	"github.com/okian/goalcast/internal/domain/model"
)

// Minute bounds for display.
const (
	MinMinute = 0
	MaxMinute = 95
)

// Defaults are substituted for missing or unusable raw values.
type Defaults struct {
	Minute           int     `koanf:"minute"`
	XG               float64 `koanf:"xg"`
	ShotsOnTarget    float64 `koanf:"shots_on_target"`
	DangerousAttacks float64 `koanf:"dangerous_attacks"`
	TotalAttacks     float64 `koanf:"total_attacks"`
}

// Gate suppresses predictions on data too sparse to be meaningful.
type Gate struct {
	Enabled           bool    `koanf:"enabled"`
	MinShotsOnTarget  float64 `koanf:"min_shots_on_target"`
	MinMinute         int     `koanf:"min_minute"`
	MaxMinute         int     `koanf:"max_minute"`
	RequireStatistics bool    `koanf:"require_statistics"`
}

// Params configures the extractor.
type Params struct {
	Defaults Defaults `koanf:"defaults"`
	Gate     Gate     `koanf:"gate"`
}

// DefaultParams returns the canonical defaulting policy. The gate is off.
func DefaultParams() Params {
	return Params{
		Defaults: Defaults{
			Minute:           45,
			XG:               0.4,
			ShotsOnTarget:    2,
			DangerousAttacks: 5,
			TotalAttacks:     20,
		},
		Gate: Gate{
			Enabled:           false,
			MinShotsOnTarget:  2,
			MinMinute:         10,
			MaxMinute:         90,
			RequireStatistics: true,
		},
	}
}

// Extractor builds MatchFeatures from RawMatch records.
type Extractor struct {
	p Params
}

// NewExtractor returns an Extractor. Non-positive defaults are replaced by the canonical ones.
func NewExtractor(p Params) *Extractor {
	d := DefaultParams().Defaults
	if p.Defaults.XG <= 0 {
		p.Defaults.XG = d.XG
	}
	if p.Defaults.ShotsOnTarget <= 0 {
		p.Defaults.ShotsOnTarget = d.ShotsOnTarget
	}
	if p.Defaults.DangerousAttacks < 0 {
		p.Defaults.DangerousAttacks = d.DangerousAttacks
	}
	if p.Defaults.TotalAttacks <= 0 {
		p.Defaults.TotalAttacks = d.TotalAttacks
	}
	if p.Defaults.Minute <= MinMinute || p.Defaults.Minute > MaxMinute {
		p.Defaults.Minute = d.Minute
	}
	return &Extractor{p: p}
}

// Extract returns fully populated features. It never fails.
func (e *Extractor) Extract(raw model.RawMatch) model.MatchFeatures {
	d := e.p.Defaults
	f := model.MatchFeatures{
		HomeScore:            score(raw.HomeScore),
		AwayScore:            score(raw.AwayScore),
		Minute:               minute(raw.Minute, d.Minute),
		XGHome:               d.XG,
		XGAway:               d.XG,
		ShotsOnTargetHome:    d.ShotsOnTarget,
		ShotsOnTargetAway:    d.ShotsOnTarget,
		DangerousAttacksHome: d.DangerousAttacks,
		DangerousAttacksAway: d.DangerousAttacks,
		TotalAttacksHome:     d.TotalAttacks,
		TotalAttacksAway:     d.TotalAttacks,
		League:               raw.League,
	}

	s := raw.Stats
	if s == nil {
		return f
	}
	f.StatsAvailable = true
	f.XGHome = s.XGHome.Or(d.XG)
	f.XGAway = s.XGAway.Or(d.XG)
	f.ShotsOnTargetHome = s.ShotsOnTargetHome.Or(d.ShotsOnTarget)
	f.ShotsOnTargetAway = s.ShotsOnTargetAway.Or(d.ShotsOnTarget)
	f.DangerousAttacksHome = s.DangerousAttacksHome.Or(d.DangerousAttacks)
	f.DangerousAttacksAway = s.DangerousAttacksAway.Or(d.DangerousAttacks)
	f.TotalAttacksHome = attacks(s.TotalAttacksHome, d.TotalAttacks)
	f.TotalAttacksAway = attacks(s.TotalAttacksAway, d.TotalAttacks)
	return f
}

// Accept applies the validity gate. It always accepts when the gate is disabled.
func (e *Extractor) Accept(f model.MatchFeatures) bool {
	g := e.p.Gate
	if !g.Enabled {
		return true
	}
	switch {
	case g.RequireStatistics && !f.StatsAvailable:
		return false
	case f.XGHome <= 0 || f.XGAway <= 0:
		return false
	case f.ShotsOnTargetHome+f.ShotsOnTargetAway < g.MinShotsOnTarget:
		return false
	case f.Minute < g.MinMinute || f.Minute > g.MaxMinute:
		return false
	}
	return true
}

func score(n model.Num) int {
	if !n.Usable() || n.V > math.MaxInt32 {
		return 0
	}
	return int(n.V)
}

func minute(n model.Num, def int) int {
	if !n.Usable() || n.V > math.MaxInt32 {
		return def
	}
	m := int(n.V)
	if m > MaxMinute {
		m = MaxMinute
	}
	return m
}

// attacks never returns 0 so the pressure ratio always has a denominator.
func attacks(n model.Num, def float64) float64 {
	v := n.Or(def)
	if v <= 0 {
		return def
	}
	return v
}
