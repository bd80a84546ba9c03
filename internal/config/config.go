// Package config defines service configuration and its defaults.
package config

import (
	"fmt"
	"time"

	"github.com/okian/goalcast/internal/domain/engine"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`
	// AllowedOrigins feeds the CORS policy.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// RefreshIntervalMS is the period of the refresh loop.
	RefreshIntervalMS int `koanf:"refresh_interval_ms"`

	// UpstreamBaseURL is the live-data provider API root.
	UpstreamBaseURL string `koanf:"upstream_base_url"`
	// UpstreamTimeoutMS bounds one whole fetch-and-process cycle.
	UpstreamTimeoutMS int `koanf:"upstream_timeout_ms"`
	// FetchStatistics enables the per-match statistics request.
	FetchStatistics bool `koanf:"fetch_statistics"`
	// StatisticsTimeoutMS bounds each statistics request inside a cycle.
	StatisticsTimeoutMS int `koanf:"statistics_timeout_ms"`
	// MaxMatches caps the ranked snapshot; it overrides engine.max_matches.
	MaxMatches int `koanf:"max_matches"`

	// CacheBackend is memory or redis.
	CacheBackend string `koanf:"cache_backend"`
	// CacheTTLMS is how long a snapshot is served after it was built.
	CacheTTLMS int    `koanf:"cache_ttl_ms"`
	RedisAddr  string `koanf:"redis_addr"`
	RedisKey   string `koanf:"redis_key"`

	// WorkerCount sets the number of match processing workers.
	WorkerCount int `koanf:"worker_count"`
	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size"`

	NotificationCap       int `koanf:"notification_cap"`
	NotificationThreshold int `koanf:"notification_threshold"`
	NotificationFreshMS   int `koanf:"notification_fresh_ms"`
	// DedupeSize is how many announced match states are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// TelegramToken and TelegramChatID enable the Telegram sink when both are set.
	TelegramToken  string `koanf:"telegram_token"`
	TelegramChatID int64  `koanf:"telegram_chat_id"`

	// Engine is the canonical prediction parameter set. YAML only.
	Engine engine.Params `koanf:"engine"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":8080",
		AllowedOrigins:        []string{"*"},
		RefreshIntervalMS:     60_000,
		UpstreamBaseURL:       "https://api.sofascore.com/api/v1",
		UpstreamTimeoutMS:     10_000,
		FetchStatistics:       true,
		StatisticsTimeoutMS:   3_000,
		MaxMatches:            25,
		CacheBackend:          CacheMemory,
		CacheTTLMS:            120_000,
		RedisKey:              "goalcast:snapshot",
		WorkerCount:           4,
		QueueSize:             256,
		NotificationCap:       25,
		NotificationThreshold: 70,
		NotificationFreshMS:   45_000,
		DedupeSize:            1000,
		Engine:                engine.DefaultParams(),
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.RefreshIntervalMS <= 0:
		return fmt.Errorf("%w: refresh_interval_ms must be positive", ErrInvalidConfig)
	case c.UpstreamTimeoutMS <= 0:
		return fmt.Errorf("%w: upstream_timeout_ms must be positive", ErrInvalidConfig)
	case c.StatisticsTimeoutMS <= 0:
		return fmt.Errorf("%w: statistics_timeout_ms must be positive", ErrInvalidConfig)
	case c.CacheTTLMS <= 0:
		return fmt.Errorf("%w: cache_ttl_ms must be positive", ErrInvalidConfig)
	case c.CacheBackend != CacheMemory && c.CacheBackend != CacheRedis:
		return fmt.Errorf("%w: unknown cache_backend %q", ErrInvalidConfig, c.CacheBackend)
	case c.CacheBackend == CacheRedis && c.RedisAddr == "":
		return fmt.Errorf("%w: redis_addr is required for the redis cache", ErrInvalidConfig)
	case c.MaxMatches <= 0:
		return fmt.Errorf("%w: max_matches must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0 || c.QueueSize <= 0:
		return fmt.Errorf("%w: worker_count and queue_size must be positive", ErrInvalidConfig)
	}
	return nil
}

// RefreshInterval returns RefreshIntervalMS as a duration.
func (c *Config) RefreshInterval() time.Duration { return ms(c.RefreshIntervalMS) }

// UpstreamTimeout returns UpstreamTimeoutMS as a duration.
func (c *Config) UpstreamTimeout() time.Duration { return ms(c.UpstreamTimeoutMS) }

// StatisticsTimeout returns StatisticsTimeoutMS as a duration.
func (c *Config) StatisticsTimeout() time.Duration { return ms(c.StatisticsTimeoutMS) }

// CacheTTL returns CacheTTLMS as a duration.
func (c *Config) CacheTTL() time.Duration { return ms(c.CacheTTLMS) }

// NotificationFreshness returns NotificationFreshMS as a duration.
func (c *Config) NotificationFreshness() time.Duration { return ms(c.NotificationFreshMS) }

// TelegramEnabled reports whether the Telegram sink is configured.
func (c *Config) TelegramEnabled() bool { return c.TelegramToken != "" && c.TelegramChatID != 0 }

// EngineParams returns the engine parameter set with MaxMatches applied.
func (c *Config) EngineParams() engine.Params {
	p := c.Engine
	p.MaxMatches = c.MaxMatches
	return p
}

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }
