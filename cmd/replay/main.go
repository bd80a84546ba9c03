package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/goalcast/internal/config"
	"github.com/okian/goalcast/internal/replay"
	"github.com/okian/goalcast/pkg/logger"
)

const defaultReplayTimeout = 2 * time.Minute

func main() {
	var (
		liveFile   = flag.String("live", "", "Saved events/live payload")
		statsFile  = flag.String("stats", "", "JSON object of event id to statistics payload")
		nowUnix    = flag.Int64("now", 0, "Unix time the payload is evaluated at (default: now)")
		top        = flag.Int("top", 0, "Ranked predictions to print (default: max_matches)")
		workers    = flag.Int("workers", runtime.NumCPU(), "Concurrent engine workers")
		format     = flag.String("format", replay.FormatTable, "Output format: table or json")
		configFile = flag.String("config", "", "YAML config whose engine section overrides the defaults")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		replay.ShowHelp(os.Stdout)
		return
	}

	// logs go to stderr so stdout stays parseable
	if err := logger.InitWithWriter(os.Stderr, logger.FormatText); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultReplayTimeout)
	defer cancel()

	if *configFile != "" {
		_ = os.Setenv(config.EnvConfigFile, *configFile)
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	var now time.Time
	if *nowUnix > 0 {
		now = time.Unix(*nowUnix, 0)
	}

	rc := &replay.Config{
		LiveFile:  *liveFile,
		StatsFile: *statsFile,
		Now:       now,
		Top:       *top,
		Workers:   *workers,
		Format:    *format,
		Out:       os.Stdout,
	}
	if err := replay.Run(ctx, rc, cfg.EngineParams()); err != nil {
		os.Stderr.WriteString("replay failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
