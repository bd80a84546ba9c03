// Package replay runs the prediction engine over saved provider payloads.
package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/okian/goalcast/internal/adapters/upstream/sofascore"
	"github.com/okian/goalcast/internal/domain/engine"
	"github.com/okian/goalcast/internal/domain/model"
	"github.com/okian/goalcast/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// ErrNoInput is returned when no live payload is given.
var ErrNoInput = errors.New("replay: live payload file is required")

// Result is the ranked output of a replay.
type Result struct {
	Predictions []model.Prediction `json:"predictions"`
	Stats       Stats              `json:"stats"`
}

// Run loads the payloads named by cfg, predicts every match and writes the
// ranked result to cfg.Out.
func Run(ctx context.Context, cfg *Config, p engine.Params) error {
	res, err := Replay(ctx, cfg, p)
	if err != nil {
		return err
	}
	if cfg.Format == FormatJSON {
		enc := json.NewEncoder(cfg.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return writeTable(cfg.Out, res)
}

// Replay loads the payloads named by cfg and returns the ranked predictions.
func Replay(ctx context.Context, cfg *Config, p engine.Params) (*Result, error) {
	start := time.Now()
	if cfg.LiveFile == "" {
		return nil, ErrNoInput
	}
	log := logger.Get().Named("replay")

	matches, err := loadLive(cfg.LiveFile, cfg.Now)
	if err != nil {
		return nil, err
	}
	stats := Stats{Fetched: len(matches)}
	if cfg.StatsFile != "" {
		n, err := attachStats(cfg.StatsFile, matches)
		if err != nil {
			return nil, err
		}
		stats.WithStats = n
	}

	if cfg.Top > 0 {
		p.MaxMatches = cfg.Top
	}
	e := engine.New(p)
	preds, err := predictAll(ctx, e, matches, cfg.Workers, &stats)
	if err != nil {
		return nil, err
	}
	ranked := e.RankAndFilter(preds)
	stats.Served = len(ranked)
	stats.Duration = time.Since(start)

	log.Info(ctx, "replay complete",
		logger.Int("fetched", stats.Fetched),
		logger.Int("withStats", stats.WithStats),
		logger.Int("processed", stats.Processed),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Duration("took", stats.Duration),
	)
	return &Result{Predictions: ranked, Stats: stats}, nil
}

func loadLive(path string, now time.Time) ([]model.RawMatch, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read live payload: %w", err)
	}
	if now.IsZero() {
		now = time.Now()
	}
	return sofascore.DecodeLive(b, now)
}

// attachStats fills Stats of every match found in the statistics file and
// returns how many matched.
func attachStats(path string, matches []model.RawMatch) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read statistics payload: %w", err)
	}
	var byID map[string]json.RawMessage
	if err := json.Unmarshal(b, &byID); err != nil {
		return 0, fmt.Errorf("decode statistics map: %w", err)
	}
	n := 0
	for i := range matches {
		raw, ok := byID[matches[i].ID]
		if !ok {
			continue
		}
		st, err := sofascore.DecodeStatistics(raw)
		if err != nil {
			return n, fmt.Errorf("match %s: %w", matches[i].ID, err)
		}
		if st != nil {
			matches[i].Stats = st
			n++
		}
	}
	return n, nil
}

func predictAll(ctx context.Context, e *engine.Engine, matches []model.RawMatch, workers int, stats *Stats) ([]model.Prediction, error) {
	if workers < 1 {
		workers = 1
	}
	slots := make([]*model.Prediction, len(matches))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range matches {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pred, err := e.Process(matches[i])
			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, engine.ErrRejected):
				stats.Rejected++
			case err != nil:
				stats.Failed++
			default:
				stats.Processed++
				slots[i] = &pred
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("replay interrupted: %w", err)
	}

	out := make([]model.Prediction, 0, len(slots))
	for _, p := range slots {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out, nil
}
