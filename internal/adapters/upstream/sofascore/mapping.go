package sofascore

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okian/goalcast/internal/domain/model"
)

// DecodeLive maps a saved events/live payload as if it was fetched at now.
func DecodeLive(b []byte, now time.Time) ([]model.RawMatch, error) {
	var resp eventsResponse
	if err := json.Unmarshal(b, &resp); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, EndpointLive, err)
	}
	return mapEvents(resp, now), nil
}

// DecodeStatistics maps a saved event statistics payload.
func DecodeStatistics(b []byte) (*model.RawStats, error) {
	var resp statisticsResponse
	if err := json.Unmarshal(b, &resp); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, EndpointStatistics, err)
	}
	return toRawStats(resp), nil
}

func mapEvents(resp eventsResponse, now time.Time) []model.RawMatch {
	out := make([]model.RawMatch, 0, len(resp.Events))
	for _, ev := range resp.Events {
		out = append(out, toRawMatch(ev, now))
	}
	return out
}

// mapFixtures keeps the first occurrence of every event id.
func mapFixtures(resp eventsResponse) []model.Fixture {
	out := make([]model.Fixture, 0, len(resp.Events))
	seen := make(map[int64]struct{}, len(resp.Events))
	for _, ev := range resp.Events {
		if _, ok := seen[ev.ID]; ok {
			continue
		}
		seen[ev.ID] = struct{}{}
		out = append(out, model.Fixture{
			ID:        strconv.FormatInt(ev.ID, 10),
			HomeTeam:  orDefault(ev.HomeTeam.Name, "Home"),
			AwayTeam:  orDefault(ev.AwayTeam.Name, "Away"),
			League:    leagueName(ev.Tournament),
			Country:   countryName(ev.Tournament),
			Status:    model.StatusScheduled,
			StartTime: ev.StartTimestamp,
		})
	}
	return out
}

func toRawMatch(ev event, now time.Time) model.RawMatch {
	st := model.StatusLive
	if ev.Status.Code == codeHalfTime {
		st = model.StatusHalfTime
	}
	return model.RawMatch{
		ID:        strconv.FormatInt(ev.ID, 10),
		HomeTeam:  orDefault(ev.HomeTeam.Name, "Home"),
		AwayTeam:  orDefault(ev.AwayTeam.Name, "Away"),
		HomeScore: ev.HomeScore.Current,
		AwayScore: ev.AwayScore.Current,
		Minute:    liveMinute(ev.Status, ev.Time.CurrentPeriodStartTimestamp, now),
		League:    leagueName(ev.Tournament),
		Country:   countryName(ev.Tournament),
		Status:    st,
		StartTime: ev.StartTimestamp,
	}
}

func leagueName(t tournament) string {
	if t.UniqueTournament != nil && t.UniqueTournament.Name != "" {
		return t.UniqueTournament.Name
	}
	return orDefault(t.Name, "League")
}

func countryName(t tournament) string {
	if n := t.Category.Country.Name; n != "" {
		return n
	}
	return orDefault(t.Category.Name, "World")
}

// liveMinute derives the match minute from the running period and its start.
// Unknown periods or a missing start time yield a missing minute.
func liveMinute(st status, periodStart int64, now time.Time) model.Num {
	var offset float64
	switch st.Code {
	case codeHalfTime:
		return model.N(45)
	case codeFirstHalf:
		offset = 0
	case codeSecondHalf:
		offset = 45
	case codeExtraFirst:
		offset = 90
	case codeExtraSecond:
		offset = 105
	default:
		return model.Missing
	}
	if periodStart <= 0 {
		return model.Missing
	}
	elapsed := now.Sub(time.Unix(periodStart, 0)).Minutes()
	if elapsed < 0 {
		elapsed = 0
	}
	return model.N(offset + math.Floor(elapsed) + 1)
}

// toRawStats picks the full-match period and maps the known items.
func toRawStats(resp statisticsResponse) *model.RawStats {
	if len(resp.Statistics) == 0 {
		return nil
	}
	period := resp.Statistics[0]
	for _, p := range resp.Statistics {
		if strings.EqualFold(p.Period, "ALL") {
			period = p
			break
		}
	}

	var s model.RawStats
	found := false
	for _, g := range period.Groups {
		for _, it := range g.Items {
			home, away := it.values()
			switch statKey(it) {
			case "expectedgoals", "expected goals":
				s.XGHome, s.XGAway = home, away
			case "shotsongoal", "shots on target":
				s.ShotsOnTargetHome, s.ShotsOnTargetAway = home, away
			case "dangerousattacks", "dangerous attacks":
				s.DangerousAttacksHome, s.DangerousAttacksAway = home, away
			case "attacks":
				s.TotalAttacksHome, s.TotalAttacksAway = home, away
			default:
				continue
			}
			found = true
		}
	}
	if !found {
		return nil
	}
	return &s
}

func statKey(it statisticItem) string {
	if it.Key != "" {
		return strings.ToLower(it.Key)
	}
	return strings.ToLower(strings.TrimSpace(it.Name))
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
