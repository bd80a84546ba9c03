package replay

import "io"

// ShowHelp prints usage information for the replay tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `goalcast replay
===============

Runs the prediction engine over a saved live-events payload.

Usage:
  go run ./cmd/replay -live events_live.json [options]

Options:
  -live string
        Saved /sport/football/events/live response (required)
  -stats string
        JSON object mapping event id to a saved /event/{id}/statistics response
  -now int
        Unix time the payload is evaluated at (default: now)
  -top int
        Ranked predictions to print (default 25)
  -workers int
        Concurrent engine workers (default CPU cores)
  -format string
        table or json (default "table")
  -config string
        YAML config whose engine section overrides the defaults
  -help
        Show this help message

Examples:
  # Capture and replay
  curl -s https://api.sofascore.com/api/v1/sport/football/events/live > live.json
  go run ./cmd/replay -live live.json -now $(date +%s)

  # JSON output with statistics
  go run ./cmd/replay -live live.json -stats stats.json -format json
`)
}
