package replay

import (
	"io"
	"time"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Config holds configuration for one replay run.
type Config struct {
	LiveFile  string    // saved events/live payload
	StatsFile string    // optional JSON object of event id to statistics payload
	Now       time.Time // wall clock the payload is evaluated at
	Top       int       // ranked predictions to keep
	Workers   int       // concurrent engine workers
	Format    string    // table or json
	Out       io.Writer
}

// Stats summarises a replay run.
type Stats struct {
	Fetched   int           `json:"fetched"`
	WithStats int           `json:"with_stats"`
	Processed int           `json:"processed"`
	Rejected  int           `json:"rejected"`
	Failed    int           `json:"failed"`
	Served    int           `json:"served"`
	Duration  time.Duration `json:"duration_ns"`
}
