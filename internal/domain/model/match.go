// Package model contains domain models passed between layers.
package model

import "time"

// Match status values as exposed to the frontend.
const (
	StatusLive      = "LIVE"
	StatusHalfTime  = "HT"
	StatusScheduled = "SCHEDULED"
)

// RawMatch is one match record as received from the live-data provider.
// Every numeric field is untrusted and may be missing.
type RawMatch struct {
	ID        string    `json:"id"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	HomeScore Num       `json:"home_score"`
	AwayScore Num       `json:"away_score"`
	Minute    Num       `json:"minute"`
	League    string    `json:"league"`
	Country   string    `json:"country"`
	Status    string    `json:"status"`
	StartTime int64     `json:"start_time"` // unix seconds, 0 when unknown
	Stats     *RawStats `json:"stats,omitempty"`
}

// Fixture is an upcoming match. It carries no prediction.
type Fixture struct {
	ID        string `json:"id"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	League    string `json:"league"`
	Country   string `json:"country"`
	Flag      string `json:"flag"`
	Kickoff   string `json:"kickoff"`
	Status    string `json:"status"`
	StartTime int64  `json:"start_time"`
}

// RawStats holds the optional per-match statistics block.
type RawStats struct {
	XGHome               Num `json:"xg_home"`
	XGAway               Num `json:"xg_away"`
	ShotsOnTargetHome    Num `json:"shots_on_target_home"`
	ShotsOnTargetAway    Num `json:"shots_on_target_away"`
	DangerousAttacksHome Num `json:"dangerous_attacks_home"`
	DangerousAttacksAway Num `json:"dangerous_attacks_away"`
	TotalAttacksHome     Num `json:"total_attacks_home"`
	TotalAttacksAway     Num `json:"total_attacks_away"`
}

// MatchFeatures is the validated, fully defaulted view of a RawMatch.
type MatchFeatures struct {
	HomeScore            int
	AwayScore            int
	Minute               int
	XGHome               float64
	XGAway               float64
	ShotsOnTargetHome    float64
	ShotsOnTargetAway    float64
	DangerousAttacksHome float64
	DangerousAttacksAway float64
	TotalAttacksHome     float64
	TotalAttacksAway     float64
	League               string
	StatsAvailable       bool
}

// TotalGoals returns the goals scored so far.
func (f MatchFeatures) TotalGoals() int { return f.HomeScore + f.AwayScore }

// GoalIntensity holds the expected remaining goals per side.
type GoalIntensity struct {
	LambdaHome  float64 `json:"lambda_home"`
	LambdaAway  float64 `json:"lambda_away"`
	TotalLambda float64 `json:"total_lambda"`
}

// MarketLine is the over probability for one goal line, as a fraction in [0,1].
type MarketLine struct {
	Line    float64 `json:"line"`
	Over    float64 `json:"over"`
	Under   float64 `json:"under"`
	Settled bool    `json:"settled"`
}

// MarketProbabilities lists the configured goal lines in ascending order.
type MarketProbabilities []MarketLine

// Over returns the over probability for line, and false when the line is not present.
func (m MarketProbabilities) Over(line float64) (float64, bool) {
	for _, l := range m {
		if l.Line == line {
			return l.Over, true
		}
	}
	return 0, false
}

// OutcomeProbabilities are integer percentages summing to 100.
type OutcomeProbabilities struct {
	HomeWin int `json:"home_win"`
	Draw    int `json:"draw"`
	AwayWin int `json:"away_win"`
}

// PressureIndex is the attacking pressure summary.
type PressureIndex struct {
	Score float64 `json:"score"`
	High  bool    `json:"high"`
}

// Recommendation is the best market when it clears the confidence bar.
type Recommendation struct {
	Market      string  `json:"market"`
	Probability float64 `json:"probability"`
}

// Alert is the notification decision for one prediction.
type Alert struct {
	Notify  bool     `json:"notify"`
	Reasons []string `json:"reasons"`
}

// Prediction is the engine output for one match in one refresh cycle.
type Prediction struct {
	MatchID         string               `json:"match_id"`
	HomeTeam        string               `json:"home_team"`
	AwayTeam        string               `json:"away_team"`
	League          string               `json:"league"`
	Country         string               `json:"country"`
	Flag            string               `json:"flag"`
	Kickoff         string               `json:"kickoff"`
	Status          string               `json:"status"`
	Score           string               `json:"score"`
	HomeScore       int                  `json:"home_score"`
	AwayScore       int                  `json:"away_score"`
	Minute          int                  `json:"minute"`
	LeagueIntensity int                  `json:"league_intensity"`
	Intensity       GoalIntensity        `json:"intensity"`
	Markets         MarketProbabilities  `json:"markets"`
	Outcome         OutcomeProbabilities `json:"outcome"`
	BTTS            float64              `json:"btts"`
	Pressure        PressureIndex        `json:"pressure"`
	Tempo           float64              `json:"tempo"`
	DeadMatch       bool                 `json:"dead_match"`
	Recommendation  *Recommendation      `json:"recommendation"`
	Confidence      int                  `json:"confidence"`
	Alert           Alert                `json:"alert"`
	StatsAvailable  bool                 `json:"stats_available"`
}

// Snapshot is one complete, immutable refresh result.
type Snapshot struct {
	Predictions []Prediction  `json:"predictions"`
	GeneratedAt time.Time     `json:"generated_at"`
	Cycle       int64         `json:"cycle"`
	Stats       SnapshotStats `json:"stats"`
}

// SnapshotStats summarises a refresh cycle.
type SnapshotStats struct {
	Fetched   int `json:"fetched"`
	Processed int `json:"processed"`
	Rejected  int `json:"rejected"`
	Dropped   int `json:"dropped"`
	Alerts    int `json:"alerts"`
}

// Notification is a qualifying prediction captured at push time.
type Notification struct {
	ID             string          `json:"id"`
	MatchID        string          `json:"match_id"`
	HomeTeam       string          `json:"home_team"`
	AwayTeam       string          `json:"away_team"`
	League         string          `json:"league"`
	Score          string          `json:"score"`
	Minute         int             `json:"minute"`
	Confidence     int             `json:"confidence"`
	Recommendation *Recommendation `json:"recommendation"`
	Alert          Alert           `json:"alert"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NotificationView is a Notification with its read-time freshness.
type NotificationView struct {
	Notification
	Fresh      bool  `json:"fresh"`
	AgeSeconds int64 `json:"age_seconds"`
}
