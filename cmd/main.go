package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/okian/goalcast/internal/adapters/cache"
	"github.com/okian/goalcast/internal/adapters/http/api"
	"github.com/okian/goalcast/internal/adapters/http/site"
	"github.com/okian/goalcast/internal/adapters/http/stream"
	"github.com/okian/goalcast/internal/adapters/http/swagger"
	"github.com/okian/goalcast/internal/adapters/notifier"
	"github.com/okian/goalcast/internal/adapters/upstream/sofascore"
	app "github.com/okian/goalcast/internal/app"
	"github.com/okian/goalcast/internal/config"
	"github.com/okian/goalcast/internal/domain/model"
	"github.com/okian/goalcast/pkg/logger"
	"github.com/okian/goalcast/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 15 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
	redisDialTimeout  = 5 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error(ctx, "goalcast stopped with error", logger.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run(ctx context.Context) error {
	// Load configuration (defaults -> optional file -> .env -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.InitWithFormat(cfg.LogFormat); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, closeStore, err := buildCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	upstream := sofascore.New(cfg.UpstreamBaseURL, sofascore.WithTimeout(cfg.UpstreamTimeout()))

	var svc *app.Service
	hub := stream.NewHub(ctx, func(ctx context.Context) (*model.Snapshot, error) { return svc.Snapshot(ctx) }, cfg.AllowedOrigins)

	opts := []app.Option{app.WithCache(store), app.WithPublisher(hub), app.WithLogger(log.Named("refresh"))}
	var tg *notifier.Telegram
	if cfg.TelegramEnabled() {
		tg, err = notifier.Dial(cfg.TelegramToken, cfg.TelegramChatID, "")
		if err != nil {
			// the dashboard works without the bot
			log.Warn(ctx, "telegram notifications disabled", logger.Error(err))
		} else {
			opts = append(opts, app.WithSink(tg))
		}
	}

	svc = app.New(cfg, upstream, opts...)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(cfg, svc, hub),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		metrics.RunSystemCollector(gctx)
		return nil
	})
	g.Go(func() error { return svc.Run(gctx) })
	if tg != nil {
		g.Go(func() error {
			tg.Run(gctx)
			return nil
		})
	}
	g.Go(func() error {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(ctx, "shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		if err := svc.Stop(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})

	err = g.Wait()
	log.Info(ctx, "server stopped")
	return err
}

// buildCache returns the configured snapshot store and its cleanup.
func buildCache(ctx context.Context, cfg *config.Config) (cache.Store, func(), error) {
	if cfg.CacheBackend != config.CacheRedis {
		return cache.NewMemory(), func() {}, nil
	}
	dialCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()
	r, err := cache.DialRedis(dialCtx, cfg.RedisAddr, cfg.RedisKey)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis cache: %w", err)
	}
	return r, func() { _ = r.Close() }, nil
}

// newHandler mounts the API, the websocket stream, the API docs and the dashboard.
func newHandler(cfg *config.Config, svc *app.Service, hub http.Handler) chi.Router {
	r := api.NewRouter(cfg.AllowedOrigins)
	api.NewServer(svc, api.WithProbeTimeout(cfg.UpstreamTimeout())).Register(r)
	r.Handle("/ws", hub)
	swagger.Register(r)
	site.Register(r)
	return r
}
