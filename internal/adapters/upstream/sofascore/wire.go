package sofascore

import "github.com/okian/goalcast/internal/domain/model"

// Status codes used by the provider for the running period.
const (
	codeFirstHalf      = 6
	codeSecondHalf     = 7
	codeHalfTime       = 31
	codeExtraFirst     = 41
	codeExtraSecond    = 42
	statusTypeProgress = "inprogress"
)

type eventsResponse struct {
	Events []event `json:"events"`
}

type event struct {
	ID             int64      `json:"id"`
	HomeTeam       team       `json:"homeTeam"`
	AwayTeam       team       `json:"awayTeam"`
	HomeScore      score      `json:"homeScore"`
	AwayScore      score      `json:"awayScore"`
	Status         status     `json:"status"`
	Tournament     tournament `json:"tournament"`
	StartTimestamp int64      `json:"startTimestamp"`
	Time           eventTime  `json:"time"`
}

type team struct {
	Name string `json:"name"`
}

type score struct {
	Current model.Num `json:"current"`
}

type status struct {
	Code        int    `json:"code"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

type tournament struct {
	Name             string `json:"name"`
	Category         named  `json:"category"`
	UniqueTournament *named `json:"uniqueTournament"`
}

type named struct {
	Name    string `json:"name"`
	Country struct {
		Name string `json:"name"`
	} `json:"country"`
}

type eventTime struct {
	CurrentPeriodStartTimestamp int64 `json:"currentPeriodStartTimestamp"`
}

type statisticsResponse struct {
	Statistics []statisticsPeriod `json:"statistics"`
}

type statisticsPeriod struct {
	Period string            `json:"period"`
	Groups []statisticsGroup `json:"groups"`
}

type statisticsGroup struct {
	GroupName string          `json:"groupName"`
	Items     []statisticItem `json:"statisticsItems"`
}

type statisticItem struct {
	Name      string    `json:"name"`
	Key       string    `json:"key"`
	Home      model.Num `json:"home"`
	Away      model.Num `json:"away"`
	HomeValue model.Num `json:"homeValue"`
	AwayValue model.Num `json:"awayValue"`
}

func (i statisticItem) values() (home, away model.Num) {
	home, away = i.HomeValue, i.AwayValue
	if !home.Valid {
		home = i.Home
	}
	if !away.Valid {
		away = i.Away
	}
	return home, away
}
