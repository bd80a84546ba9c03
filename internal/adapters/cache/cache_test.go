package cache_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/goalcast/internal/adapters/cache"
	"github.com/okian/goalcast/internal/domain/model"
	"github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()

	Convey("Given a memory store with a controllable clock", t, func() {
		now := time.Unix(1700000000, 0)
		m := cache.NewMemory(cache.WithClock(func() time.Time { return now }))

		Convey("When nothing was stored", func() {
			_, err := m.Get(ctx)
			So(errors.Is(err, cache.ErrCacheMiss), ShouldBeTrue)
		})

		Convey("When a snapshot is stored", func() {
			snap := &model.Snapshot{Cycle: 3}
			So(m.Put(ctx, snap, time.Minute), ShouldBeNil)

			Convey("Then it is returned while fresh", func() {
				got, err := m.Get(ctx)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, snap)
			})

			Convey("Then it misses once the ttl elapsed", func() {
				now = now.Add(time.Minute)
				_, err := m.Get(ctx)
				So(errors.Is(err, cache.ErrCacheMiss), ShouldBeTrue)
			})

			Convey("Then a newer snapshot replaces it", func() {
				next := &model.Snapshot{Cycle: 4}
				So(m.Put(ctx, next, time.Minute), ShouldBeNil)
				got, _ := m.Get(ctx)
				So(got.Cycle, ShouldEqual, int64(4))
			})
		})

		Convey("When stored without ttl", func() {
			So(m.Put(ctx, &model.Snapshot{Cycle: 1}, 0), ShouldBeNil)
			now = now.Add(24 * time.Hour)
			got, err := m.Get(ctx)
			So(err, ShouldBeNil)
			So(got.Cycle, ShouldEqual, int64(1))
		})

		Convey("When storing nil", func() {
			So(errors.Is(m.Put(ctx, nil, time.Minute), cache.ErrNilValue), ShouldBeTrue)
		})
	})
}

func TestMemory_Concurrent(t *testing.T) {
	Convey("Given concurrent writers and readers", t, func() {
		ctx := context.Background()
		m := cache.NewMemory()
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(2)
			go func(i int) {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					_ = m.Put(ctx, &model.Snapshot{Cycle: int64(i*100 + j), Predictions: make([]model.Prediction, i)}, time.Minute)
				}
			}(i)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					if s, err := m.Get(ctx); err == nil && s == nil {
						panic("nil snapshot on hit")
					}
				}
			}()
		}
		wg.Wait()

		Convey("Then the final value is a complete snapshot", func() {
			got, err := m.Get(ctx)
			So(err, ShouldBeNil)
			So(got, ShouldNotBeNil)
		})
	})
}

func TestRedis_Unreachable(t *testing.T) {
	Convey("Given a redis store whose server is unreachable", t, func() {
		client := redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 50 * time.Millisecond,
			MaxRetries:  -1,
		})
		r := cache.NewRedis(client, "goalcast:test")
		defer func() { _ = r.Close() }()
		ctx := context.Background()

		Convey("Then reads and writes report a backend error", func() {
			_, err := r.Get(ctx)
			So(errors.Is(err, cache.ErrBackend), ShouldBeTrue)
			So(errors.Is(err, cache.ErrCacheMiss), ShouldBeFalse)

			err = r.Put(ctx, &model.Snapshot{Cycle: 1}, time.Minute)
			So(errors.Is(err, cache.ErrBackend), ShouldBeTrue)
		})

		Convey("Then nil snapshots are rejected before any I/O", func() {
			So(errors.Is(r.Put(ctx, nil, time.Minute), cache.ErrNilValue), ShouldBeTrue)
		})

		Convey("Then dialing fails fast", func() {
			ctx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
			defer cancel()
			_, err := cache.DialRedis(ctx, "127.0.0.1:1", "k")
			So(errors.Is(err, cache.ErrBackend), ShouldBeTrue)
		})
	})
}
