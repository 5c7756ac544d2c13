// Package http exposes the coding service over HTTP.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/TextCoder/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TextCoder/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/TextCoder/internal/interfaces/http/handlers"
	"github.com/turtacn/TextCoder/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware of the route tree.
// Nil handlers leave their routes unregistered.
type RouterConfig struct {
	CodingHandler  *handlers.CodingHandler
	PresetHandler  *handlers.PresetHandler
	WebhookHandler *handlers.WebhookHandler
	JobHandler     *handlers.JobHandler
	HealthHandler  *handlers.HealthHandler

	CORS        middleware.CORSConfig
	MaxBodySize int64

	Logger           logging.Logger
	MetricsCollector prometheus.MetricsCollector
	MetricsPath      string
	HTTPObserver     middleware.HTTPObserver
	RequestTimeout   time.Duration
}

// NewRouter builds the route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.HTTPObserver, middleware.DefaultLoggingConfig()))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.MaxBodySize(cfg.MaxBodySize))
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}

	if h := cfg.HealthHandler; h != nil {
		r.Get("/healthz", h.Liveness)
		r.Get("/readyz", h.Readiness)
	}
	if cfg.MetricsCollector != nil {
		r.Method(http.MethodGet, cfg.MetricsPath, cfg.MetricsCollector.Handler())
	}

	if h := cfg.CodingHandler; h != nil {
		r.Post("/code", h.Code)
		r.Get("/runs", h.ListRuns)
		r.Get("/runs/{runID}", h.GetRun)
	}
	if h := cfg.PresetHandler; h != nil {
		r.Get("/presets", h.List)
		r.Post("/validate_preset", h.Validate)
		r.Post("/extend_lexicon", h.Extend)
	}
	if h := cfg.WebhookHandler; h != nil {
		r.Post("/gh/webhook", h.Handle)
	}
	if h := cfg.JobHandler; h != nil {
		r.Post("/jobs", h.Submit)
	}
	return r
}

//Personal.AI order the ending
