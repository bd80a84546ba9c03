package engine

import (
	"github.com/okian/goalcast/internal/domain/alert"
	"github.com/okian/goalcast/internal/domain/features"
	"github.com/okian/goalcast/internal/domain/markets"
	"github.com/okian/goalcast/internal/domain/outcome"
	"github.com/okian/goalcast/internal/domain/pressure"
)

// Params is the single canonical parameter set of the prediction engine.
type Params struct {
	Features features.Params `koanf:"features"`
	Pressure pressure.Params `koanf:"pressure"`
	Markets  markets.Params  `koanf:"markets"`
	Outcome  outcome.Params  `koanf:"outcome"`
	Alert    alert.Params    `koanf:"alert"`

	RecommendThreshold float64 `koanf:"recommend_threshold"`
	ConfidenceCap      int     `koanf:"confidence_cap"`
	ProbabilityWeight  float64 `koanf:"probability_weight"`
	MinuteWeight       float64 `koanf:"minute_weight"`
	MissingStatsFactor float64 `koanf:"missing_stats_factor"`
	MaxMatches         int     `koanf:"max_matches"`

	LeagueFactors       map[string]float64 `koanf:"league_factors"`
	DefaultLeagueFactor float64            `koanf:"default_league_factor"`
}

// DefaultParams returns the canonical engine parameters.
func DefaultParams() Params {
	return Params{
		Features:           features.DefaultParams(),
		Pressure:           pressure.DefaultParams(),
		Markets:            markets.DefaultParams(),
		Outcome:            outcome.DefaultParams(),
		Alert:              alert.DefaultParams(),
		RecommendThreshold: 0.75,
		ConfidenceCap:      95,
		ProbabilityWeight:  80,
		MinuteWeight:       20,
		MissingStatsFactor: 0.9,
		MaxMatches:         25,
		LeagueFactors: map[string]float64{
			"Dhaka Senior Division League": 2,
			"Mumbai Super League":          2,
			"Premier League":               4,
			"Bundesliga":                   6,
			"Serie A":                      1,
		},
		DefaultLeagueFactor: 2,
	}
}
