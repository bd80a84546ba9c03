package engine

import "time"

// pkt is Pakistan Standard Time, the display zone of the dashboard.
var pkt = time.FixedZone("PKT", 5*60*60)

var flags = map[string]string{
	"England":    "\U0001F3F4\U000E0067\U000E0062\U000E0065\U000E006E\U000E0067\U000E007F",
	"Germany":    "\U0001F1E9\U0001F1EA",
	"Spain":      "\U0001F1EA\U0001F1F8",
	"Italy":      "\U0001F1EE\U0001F1F9",
	"India":      "\U0001F1EE\U0001F1F3",
	"Bangladesh": "\U0001F1E7\U0001F1E9",
}

const defaultFlag = "⚽"

// Flag returns the display flag for a country, a football when unknown.
func Flag(country string) string {
	if f, ok := flags[country]; ok {
		return f
	}
	return defaultFlag
}

// Kickoff formats a unix start time as HH:MM in PKT. Zero yields an empty string.
func Kickoff(unix int64) string {
	if unix <= 0 {
		return ""
	}
	return time.Unix(unix, 0).In(pkt).Format("15:04")
}
