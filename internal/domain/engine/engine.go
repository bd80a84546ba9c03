// Package engine turns raw match records into ranked predictions.
package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/goalcast/internal/domain/alert"
	"github.com/okian/goalcast/internal/domain/features"
	"github.com/okian/goalcast/internal/domain/markets"
	"github.com/okian/goalcast/internal/domain/model"
	"github.com/okian/goalcast/internal/domain/outcome"
	"github.com/okian/goalcast/internal/domain/poisson"
	"github.com/okian/goalcast/internal/domain/pressure"
)

// Market names used in recommendations besides the over lines.
const (
	MarketHomeWin = "home win"
	MarketAwayWin = "away win"
)

// Engine is stateless after construction and safe for concurrent use.
type Engine struct {
	p        Params
	extract  *features.Extractor
	pressure *pressure.Calculator
	markets  *markets.Calculator
	outcome  *outcome.Calculator
	alert    *alert.Decider
}

// New builds an Engine. The Poisson table is sized for two sides at the intensity cap.
func New(p Params) *Engine {
	if p.MaxMatches <= 0 {
		p.MaxMatches = DefaultParams().MaxMatches
	}
	table := poisson.NewTable(poisson.WithMaxLambda(2 * p.Markets.MaxLambda))
	return &Engine{
		p:        p,
		extract:  features.NewExtractor(p.Features),
		pressure: pressure.New(p.Pressure),
		markets:  markets.New(p.Markets, table),
		outcome:  outcome.New(p.Outcome),
		alert:    alert.New(p.Alert),
	}
}

// Params returns the parameter set in use.
func (e *Engine) Params() Params { return e.p }

// ProcessMatch returns the prediction for raw, or false when the match is
// rejected or could not be processed.
func (e *Engine) ProcessMatch(raw model.RawMatch) (model.Prediction, bool) {
	p, err := e.Process(raw)
	return p, err == nil
}

// Process is ProcessMatch with the reason for a missing prediction.
func (e *Engine) Process(raw model.RawMatch) (pred model.Prediction, err error) {
	defer func() {
		if r := recover(); r != nil {
			pred, err = model.Prediction{}, fmt.Errorf("%w: match %s: %v", ErrPanic, raw.ID, r)
		}
	}()

	f := e.extract.Extract(raw)
	if !e.extract.Accept(f) {
		return model.Prediction{}, fmt.Errorf("%w: match %s", ErrRejected, raw.ID)
	}

	press := e.pressure.Index(f)
	tempo := e.pressure.Tempo(f)
	intensity := e.markets.Intensity(f)
	dead := e.pressure.IsDead(f, tempo, intensity.TotalLambda)
	lines := e.markets.Markets(markets.Input{
		Intensity: intensity,
		Goals:     f.TotalGoals(),
		Minute:    f.Minute,
		Pressure:  press,
		Tempo:     tempo,
	})
	result := e.outcome.Compute(f, intensity)
	decision := e.alert.Decide(alert.Input{
		Markets:  lines,
		Goals:    f.TotalGoals(),
		Minute:   f.Minute,
		Pressure: press,
		Tempo:    tempo,
		Dead:     dead,
	})

	market, best := e.best(lines, result)
	var rec *model.Recommendation
	if best >= e.p.RecommendThreshold {
		rec = &model.Recommendation{Market: market, Probability: best}
	}

	status := model.StatusLive
	if raw.Status == model.StatusHalfTime {
		status = model.StatusHalfTime
	}

	return model.Prediction{
		MatchID:         raw.ID,
		HomeTeam:        raw.HomeTeam,
		AwayTeam:        raw.AwayTeam,
		League:          raw.League,
		Country:         raw.Country,
		Flag:            Flag(raw.Country),
		Kickoff:         Kickoff(raw.StartTime),
		Status:          status,
		Score:           fmt.Sprintf("%d-%d", f.HomeScore, f.AwayScore),
		HomeScore:       f.HomeScore,
		AwayScore:       f.AwayScore,
		Minute:          f.Minute,
		LeagueIntensity: e.leagueIntensity(f),
		Intensity:       intensity,
		Markets:         lines,
		Outcome:         result,
		BTTS:            e.markets.BTTS(f, intensity),
		Pressure:        press,
		Tempo:           tempo,
		DeadMatch:       dead,
		Recommendation:  rec,
		Confidence:      e.confidence(best, f),
		Alert:           decision.Alert(),
		StatsAvailable:  f.StatsAvailable,
	}, nil
}

// best returns the most likely market among open over lines and the two wins.
func (e *Engine) best(lines model.MarketProbabilities, o model.OutcomeProbabilities) (string, float64) {
	name, best := "", 0.0
	for _, l := range lines {
		if !l.Settled && l.Over > best {
			name, best = markets.Label(l.Line), l.Over
		}
	}
	if h := float64(o.HomeWin) / 100; h > best {
		name, best = MarketHomeWin, h
	}
	if a := float64(o.AwayWin) / 100; a > best {
		name, best = MarketAwayWin, a
	}
	return name, best
}

func (e *Engine) confidence(best float64, f model.MatchFeatures) int {
	c := math.Round(e.p.ProbabilityWeight*best + e.p.MinuteWeight*float64(f.Minute)/90)
	c = math.Min(c, float64(e.p.ConfidenceCap))
	if !f.StatsAvailable {
		c = math.Round(c * e.p.MissingStatsFactor)
	}
	if math.IsNaN(c) || c < 0 {
		return 0
	}
	return int(c)
}

func (e *Engine) leagueIntensity(f model.MatchFeatures) int {
	factor, ok := e.p.LeagueFactors[f.League]
	if !ok {
		factor = e.p.DefaultLeagueFactor
	}
	return int(math.Round(float64(f.Minute) + factor*10))
}

// RankAndFilter orders predictions by confidence, highest first, with match id
// breaking ties, and keeps at most MaxMatches. The input is not modified.
func (e *Engine) RankAndFilter(preds []model.Prediction) []model.Prediction {
	out := make([]model.Prediction, len(preds))
	copy(out, preds)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].MatchID < out[j].MatchID
	})
	if len(out) > e.p.MaxMatches {
		out = out[:e.p.MaxMatches]
	}
	return out
}
