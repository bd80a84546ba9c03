// Package alert decides whether a match state is worth notifying about.
package alert

import (
	"fmt"

	"github.com/okian/goalcast/internal/domain/model"
)

// Params holds the trigger thresholds.
type Params struct {
	Over05     float64 `koanf:"over_05"`
	Over15     float64 `koanf:"over_15"`
	Over25     float64 `koanf:"over_25"`
	MinTempo   float64 `koanf:"min_tempo"`
	LateMinute int     `koanf:"late_minute"`
}

// DefaultParams returns the canonical alert thresholds.
func DefaultParams() Params {
	return Params{
		Over05:     0.82,
		Over15:     0.77,
		Over25:     0.60,
		MinTempo:   6,
		LateMinute: 70,
	}
}

// Input is the computed state of one match.
type Input struct {
	Markets  model.MarketProbabilities
	Goals    int
	Minute   int
	Pressure model.PressureIndex
	Tempo    float64
	Dead     bool
}

// Decision is the outcome of Decide. Reasons explain a notification or a veto.
type Decision struct {
	Notify  bool
	Vetoed  bool
	Reasons []string
}

// Alert converts the decision to its model form.
func (d Decision) Alert() model.Alert {
	reasons := d.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	return model.Alert{Notify: d.Notify, Reasons: reasons}
}

// Decider evaluates alert rules.
type Decider struct {
	p Params
}

// New returns a Decider.
func New(p Params) *Decider {
	return &Decider{p: p}
}

// Decide applies the base trigger, the dead-match veto and the reinforcement rule.
func (d *Decider) Decide(in Input) Decision {
	o05, _ := in.Markets.Over(0.5)
	o15, _ := in.Markets.Over(1.5)
	o25, _ := in.Markets.Over(2.5)

	var reasons []string
	switch {
	case o05 >= d.p.Over05:
		reasons = append(reasons, fmt.Sprintf("over 0.5 at %.0f%%", o05*100))
	case o15 >= d.p.Over15:
		reasons = append(reasons, fmt.Sprintf("over 1.5 at %.0f%%", o15*100))
	default:
		return Decision{}
	}
	if !in.Pressure.High || in.Goals != 0 {
		return Decision{}
	}
	reasons = append(reasons, fmt.Sprintf("high pressure %.2f", in.Pressure.Score))

	if in.Dead {
		return Decision{Vetoed: true, Reasons: []string{"dead match"}}
	}

	if in.Tempo <= d.p.MinTempo {
		return Decision{}
	}
	reasons = append(reasons, fmt.Sprintf("tempo %.1f", in.Tempo))

	late := in.Minute >= d.p.LateMinute
	confluence := o15 >= d.p.Over15 && o25 >= d.p.Over25
	switch {
	case late && confluence:
		reasons = append(reasons, fmt.Sprintf("late game at minute %d", in.Minute), "confluence over 1.5 and over 2.5")
	case late:
		reasons = append(reasons, fmt.Sprintf("late game at minute %d", in.Minute))
	case confluence:
		reasons = append(reasons, "confluence over 1.5 and over 2.5")
	default:
		return Decision{}
	}
	return Decision{Notify: true, Reasons: reasons}
}
