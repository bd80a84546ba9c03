// Package service owns every stateful component of goalcast and runs the
// periodic refresh that turns live matches into a ranked snapshot.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/goalcast/internal/adapters/cache"
	eventqueue "github.com/okian/goalcast/internal/adapters/mq/queue"
	workerpool "github.com/okian/goalcast/internal/adapters/mq/worker"
	"github.com/okian/goalcast/internal/adapters/upstream/sofascore"
	"github.com/okian/goalcast/internal/config"
	"github.com/okian/goalcast/internal/domain/dedupe"
	"github.com/okian/goalcast/internal/domain/engine"
	"github.com/okian/goalcast/internal/domain/model"
	"github.com/okian/goalcast/internal/domain/notify"
	"github.com/okian/goalcast/pkg/logger"
	"github.com/okian/goalcast/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

// publishTimeout bounds the cache write and sink delivery of one snapshot.
const publishTimeout = 5 * time.Second

// Upstream lists live matches and probes the provider.
type Upstream interface {
	LiveEvents(ctx context.Context) ([]model.RawMatch, error)
	Probe(ctx context.Context) sofascore.ProbeResult
}

// FixtureLister lists upcoming matches. Upstreams without it serve none.
type FixtureLister interface {
	Upcoming(ctx context.Context) ([]model.Fixture, error)
}

// Publisher receives every new snapshot, e.g. the websocket hub.
type Publisher interface {
	Publish(snap *model.Snapshot)
}

// Sink receives notification entries as they are pushed, e.g. Telegram.
type Sink interface {
	Notify(ctx context.Context, entries []model.Notification) error
}

// Service implements the API dependencies and the refresh loop.
type Service struct {
	mu        sync.RWMutex
	refreshMu sync.Mutex

	cfg      *config.Config
	upstream Upstream
	engine   *engine.Engine
	cache    cache.Store
	board    *notify.Board

	queue *eventqueue.InMemoryQueue
	pool  *workerpool.Pool

	publishers []Publisher
	sinks      []Sink

	// last is the newest snapshot built here, served when the shared cache fails.
	last      atomic.Pointer[model.Snapshot]
	cycle     atomic.Int64
	failures  atomic.Int64
	lastError atomic.Pointer[string]
	startedAt time.Time

	fixtures     atomic.Pointer[fixtureSet]
	fixtureGroup singleflight.Group

	started bool
	now     func() time.Time
	logger  logger.Logger
}

// New constructs a Service from configuration. Components that need
// goroutines are created by Start.
func New(cfg *config.Config, up Upstream, opts ...Option) *Service {
	s := &Service{
		cfg:      cfg,
		upstream: up,
		engine:   engine.New(cfg.EngineParams()),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("refresh")
	}
	if s.cache == nil {
		s.cache = cache.NewMemory(cache.WithClock(s.now))
	}
	s.board = notify.NewBoard(
		notify.WithCapacity(cfg.NotificationCap),
		notify.WithThreshold(cfg.NotificationThreshold),
		notify.WithFreshness(cfg.NotificationFreshness()),
		notify.WithDeduper(dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(cfg.DedupeSize))),
		notify.WithClock(s.now),
	)
	return s
}

// Start creates the job queue and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.cfg.QueueSize))
	var wopts []workerpool.Option
	if enr, ok := s.upstream.(workerpool.Enricher); ok && s.cfg.FetchStatistics {
		wopts = append(wopts,
			workerpool.WithEnricher(enr),
			workerpool.WithStatisticsTimeout(s.cfg.StatisticsTimeout()),
		)
	}
	s.pool = workerpool.NewPool(s.cfg.WorkerCount, s.queue, s.engine, wopts...)
	s.pool.Start(ctx)

	s.startedAt = s.now()
	s.started = true
	s.logger.Info(ctx, "goalcast service started",
		logger.Int("workers", s.cfg.WorkerCount),
		logger.Int("queueSize", s.cfg.QueueSize),
		logger.Bool("fetchStatistics", s.cfg.FetchStatistics),
	)
	return nil
}

// Stop shuts the worker pool down.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false
	if err := s.pool.Shutdown(ctx); err != nil {
		return fmt.Errorf("stop worker pool: %w", err)
	}
	s.logger.Info(ctx, "goalcast service stopped")
	return nil
}

// Run refreshes immediately and then on every interval until ctx is done.
// Failed cycles are logged; the loop never stops on them.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.RefreshInterval())
	defer ticker.Stop()

	for {
		if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn(ctx, "refresh failed", logger.Error(err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Refresh runs one cycle. Fetching and processing are bounded by the
// upstream timeout; publishing gets its own bound so a cycle that ran out of
// time still stores what it built. On upstream failure the previous snapshot
// stays in place; otherwise a new snapshot is built off to the side and
// swapped in whole.
func (s *Service) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	s.mu.RLock()
	started, q := s.started, s.queue
	s.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}

	start := time.Now()
	raw, preds, bstats, err := s.collect(ctx, q)
	if err != nil {
		s.fail(err)
		metrics.RecordRefresh("upstream_error", msSince(start))
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	outcome := "ok"
	if bstats.Dropped > 0 {
		outcome = "partial"
	}

	snap := s.buildSnapshot(raw, preds, bstats)
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	s.publish(pctx, snap)

	s.lastError.Store(nil)
	metrics.RecordMatchesDropped(bstats.Dropped)
	metrics.RecordRefresh(outcome, msSince(start))
	s.logger.Info(ctx, "refresh complete",
		logger.Int64("cycle", snap.Cycle),
		logger.Int("fetched", snap.Stats.Fetched),
		logger.Int("served", len(snap.Predictions)),
		logger.Int("rejected", snap.Stats.Rejected),
		logger.Int("dropped", snap.Stats.Dropped),
		logger.Int("alerts", snap.Stats.Alerts),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}

// collect fetches the live list and runs it through the worker pool within
// the upstream timeout. Only the fetch can fail the cycle; matches still
// pending at the deadline are counted as dropped.
func (s *Service) collect(ctx context.Context, q *eventqueue.InMemoryQueue) ([]model.RawMatch, []model.Prediction, eventqueue.BatchStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.UpstreamTimeout())
	defer cancel()

	raw, err := s.upstream.LiveEvents(ctx)
	if err != nil {
		return nil, nil, eventqueue.BatchStats{}, err
	}

	batch := eventqueue.NewBatch(ctx, len(raw))
	for i := range raw {
		if err := q.Enqueue(ctx, eventqueue.Job{Match: raw[i], Batch: batch}); err != nil {
			batch.Drop()
		}
	}
	preds, bstats, err := batch.Wait(ctx)
	if err != nil {
		s.logger.Warn(ctx, "refresh deadline reached before every match was processed",
			logger.Int("processed", bstats.Processed),
			logger.Int("dropped", bstats.Dropped),
		)
	}
	return raw, preds, bstats, nil
}

func (s *Service) buildSnapshot(raw []model.RawMatch, preds []model.Prediction, bs eventqueue.BatchStats) *model.Snapshot {
	ranked := s.engine.RankAndFilter(preds)
	alerts := 0
	for i := range ranked {
		if ranked[i].Alert.Notify {
			alerts++
		}
	}
	return &model.Snapshot{
		Predictions: ranked,
		GeneratedAt: s.now(),
		Cycle:       s.cycle.Add(1),
		Stats: model.SnapshotStats{
			Fetched:   len(raw),
			Processed: bs.Processed,
			Rejected:  bs.Rejected + bs.Failed,
			Dropped:   bs.Dropped,
			Alerts:    alerts,
		},
	}
}

// publish swaps snap in and fans it out to the board, publishers and sinks.
func (s *Service) publish(ctx context.Context, snap *model.Snapshot) {
	s.last.Store(snap)
	if err := s.cache.Put(ctx, snap, s.cfg.CacheTTL()); err != nil {
		s.logger.Warn(ctx, "snapshot cache write failed", logger.Error(err))
	}
	metrics.UpdateLivePredictions(len(snap.Predictions))
	metrics.RecordAlerts(snap.Stats.Alerts)

	qualifying := 0
	for i := range snap.Predictions {
		if s.board.Qualifies(snap.Predictions[i]) {
			qualifying++
		}
	}
	entries := s.board.Offer(ctx, snap.Predictions)
	metrics.RecordNotificationsPushed(len(entries))
	metrics.RecordNotificationsSuppressed(qualifying - len(entries))

	for _, p := range s.publishers {
		p.Publish(snap)
	}
	if len(entries) == 0 {
		return
	}
	for _, k := range s.sinks {
		if err := k.Notify(ctx, entries); err != nil {
			s.logger.Warn(ctx, "notification sink failed", logger.Error(err))
		}
	}
}

func (s *Service) fail(err error) {
	s.failures.Add(1)
	msg := err.Error()
	s.lastError.Store(&msg)
}

// Snapshot returns the snapshot currently served. An expired or missing
// snapshot yields an empty one; a failing shared cache falls back to the
// newest snapshot built by this process while it is within its TTL.
func (s *Service) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	snap, err := s.cache.Get(ctx)
	switch {
	case err == nil:
		return snap, nil
	case errors.Is(err, cache.ErrCacheMiss):
		return &model.Snapshot{Predictions: []model.Prediction{}}, nil
	}
	if last := s.last.Load(); last != nil && s.now().Sub(last.GeneratedAt) < s.cfg.CacheTTL() {
		return last, nil
	}
	return nil, err
}

type fixtureSet struct {
	list      []model.Fixture
	fetchedAt time.Time
}

// Fixtures returns upcoming matches ordered by kickoff, at most MaxMatches.
// The list is fetched on demand and reused for one refresh interval;
// concurrent callers share one request. When the provider fails, the last
// list is served while it is within the cache TTL.
func (s *Service) Fixtures(ctx context.Context) ([]model.Fixture, error) {
	fl, ok := s.upstream.(FixtureLister)
	if !ok {
		return []model.Fixture{}, nil
	}
	if set := s.fixtures.Load(); set != nil && s.now().Sub(set.fetchedAt) < s.cfg.RefreshInterval() {
		return set.list, nil
	}

	v, err, _ := s.fixtureGroup.Do("upcoming", func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.UpstreamTimeout())
		defer cancel()
		list, err := fl.Upcoming(fctx)
		if err != nil {
			return nil, err
		}
		list = s.labelFixtures(list)
		s.fixtures.Store(&fixtureSet{list: list, fetchedAt: s.now()})
		return list, nil
	})
	if err != nil {
		if set := s.fixtures.Load(); set != nil && s.now().Sub(set.fetchedAt) < s.cfg.CacheTTL() {
			s.logger.Warn(ctx, "serving previous fixtures", logger.Error(err))
			return set.list, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	list, _ := v.([]model.Fixture)
	return list, nil
}

func (s *Service) labelFixtures(list []model.Fixture) []model.Fixture {
	out := slices.Clone(list)
	slices.SortStableFunc(out, func(a, b model.Fixture) int {
		switch {
		case a.StartTime < b.StartTime:
			return -1
		case a.StartTime > b.StartTime:
			return 1
		}
		return 0
	})
	if len(out) > s.cfg.MaxMatches {
		out = out[:s.cfg.MaxMatches]
	}
	for i := range out {
		out[i].Flag = engine.Flag(out[i].Country)
		out[i].Kickoff = engine.Kickoff(out[i].StartTime)
	}
	if out == nil {
		out = []model.Fixture{}
	}
	return out
}

// Notifications returns the board with freshness computed now.
func (s *Service) Notifications() []model.NotificationView {
	return s.board.List(s.now())
}

// Probe performs one diagnostic request against the provider.
func (s *Service) Probe(ctx context.Context) sofascore.ProbeResult {
	return s.upstream.Probe(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":       s.started,
		"workerCount":   s.cfg.WorkerCount,
		"queueSize":     s.cfg.QueueSize,
		"cacheBackend":  s.cfg.CacheBackend,
		"cycles":        s.cycle.Load(),
		"failures":      s.failures.Load(),
		"notifications": s.board.Len(),
	}
	if msg := s.lastError.Load(); msg != nil {
		stats["lastError"] = *msg
	}
	if last := s.last.Load(); last != nil {
		stats["lastRefresh"] = last.GeneratedAt
		stats["livePredictions"] = len(last.Predictions)
		stats["lastCycle"] = last.Stats
	}
	if s.started {
		stats["queueLength"] = s.queue.Len()
		stats["uptimeSeconds"] = int64(s.now().Sub(s.startedAt).Seconds())
	}
	return stats
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
