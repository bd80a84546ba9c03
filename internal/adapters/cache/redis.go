package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okian/goalcast/internal/domain/model"
	"github.com/okian/goalcast/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

// Redis stores the snapshot as JSON under a single key.
type Redis struct {
	client redis.UniversalClient
	key    string
}

// NewRedis wraps an existing client.
func NewRedis(client redis.UniversalClient, key string) *Redis {
	return &Redis{client: client, key: key}
}

// DialRedis connects to addr and verifies the connection with PING.
func DialRedis(ctx context.Context, addr, key string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: ping %s: %w", ErrBackend, addr, err)
	}
	return NewRedis(client, key), nil
}

// Get loads and decodes the snapshot.
func (r *Redis) Get(ctx context.Context) (*model.Snapshot, error) {
	b, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheMiss(BackendRedis)
		return nil, ErrCacheMiss
	}
	if err != nil {
		metrics.RecordCacheError(BackendRedis)
		return nil, fmt.Errorf("%w: get %s: %w", ErrBackend, r.key, err)
	}
	var snap model.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		metrics.RecordCacheError(BackendRedis)
		return nil, fmt.Errorf("%w: decode %s: %w", ErrBackend, r.key, err)
	}
	metrics.RecordCacheHit(BackendRedis)
	return &snap, nil
}

// Put encodes the snapshot and stores it with SET ... EX.
func (r *Redis) Put(ctx context.Context, snap *model.Snapshot, ttl time.Duration) error {
	if snap == nil {
		return ErrNilValue
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrBackend, err)
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, r.key, b, ttl).Err(); err != nil {
		metrics.RecordCacheError(BackendRedis)
		return fmt.Errorf("%w: set %s: %w", ErrBackend, r.key, err)
	}
	return nil
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
