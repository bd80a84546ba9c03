// Package api serves the prediction snapshot, notifications, upcoming
// fixtures, stats and the upstream probe as JSON.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/okian/goalcast/internal/adapters/upstream/sofascore"
	"github.com/okian/goalcast/internal/domain/model"
)

const defaultMaxLimit = 100

// SnapshotSource returns the snapshot currently served.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*model.Snapshot, error)
}

// NotificationSource returns the notification board with freshness computed now.
type NotificationSource interface {
	Notifications() []model.NotificationView
}

// Prober performs one diagnostic request against the live-data provider.
type Prober interface {
	Probe(ctx context.Context) sofascore.ProbeResult
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service.
type Dependencies interface {
	SnapshotSource
	NotificationSource
	FixturesSource
	StatsProvider
	Prober
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler        *HealthHandler
	statsHandler         *StatsHandler
	matchesHandler       *MatchesHandler
	notificationsHandler *NotificationsHandler
	fixturesHandler      *FixturesHandler
	debugHandler         *DebugHandler
}

// Option configures the Server.
type Option func(*serverOptions)

type serverOptions struct {
	maxLimit     int
	probeTimeout time.Duration
}

// WithMaxLimit caps the limit query parameter of /api/predictions.
func WithMaxLimit(n int) Option {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxLimit = n
		}
	}
}

// WithProbeTimeout bounds /api/debug.
func WithProbeTimeout(d time.Duration) Option {
	return func(o *serverOptions) {
		if d > 0 {
			o.probeTimeout = d
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	o := serverOptions{maxLimit: defaultMaxLimit, probeTimeout: 10 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:        NewHealthHandler(),
		statsHandler:         NewStatsHandler(deps),
		matchesHandler:       NewMatchesHandler(deps, deps, deps, o.maxLimit),
		notificationsHandler: NewNotificationsHandler(deps),
		fixturesHandler:      NewFixturesHandler(deps),
		debugHandler:         NewDebugHandler(deps, o.probeTimeout),
	}
}

// Register attaches all API routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/matches", s.matchesHandler.HandleMatches)
		r.Get("/predictions", s.matchesHandler.HandlePredictions)
		r.Get("/predictions/{id}", s.matchesHandler.HandlePrediction)
		r.Get("/notifications", s.notificationsHandler.HandleNotifications)
		r.Get("/fixtures", s.fixturesHandler.HandleFixtures)
		r.Get("/stats", s.statsHandler.HandleStats)
		r.Get("/debug", s.debugHandler.HandleDebug)
	})
}

// NewRouter returns a chi router with the shared middleware stack.
func NewRouter(allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(MetricsMiddleware)
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to its status and writes the error body.
func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
