package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apierrors "forecastpipe/internal/errors"
	"forecastpipe/internal/middleware"
)

const requestTimeout = 30 * time.Second

// RouterConfig gathers what the status server serves
type RouterConfig struct {
	Runs         RunService
	Observations ObservationSource
	Checks       []ReadinessCheck
	// Metrics serves /metrics; nil falls back to the default Prometheus registry
	Metrics http.Handler
	// BaseContext is inherited by runs started over HTTP
	BaseContext  context.Context
	IncludeStack bool
}

// Router is the status server's handler tree
type Router struct {
	chi.Router
	runs *RunsHandler
}

// NewRouter wires the handlers and middleware.
// Ordering: RequestID, RealIP, Logger, Recoverer, Timeout, SecurityHeaders.
func NewRouter(cfg RouterConfig, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseContext == nil {
		cfg.BaseContext = context.Background()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}

	errs := apierrors.NewErrorHandler(logger, cfg.IncludeStack)
	health := NewHealthHandler(cfg.Checks, logger)
	runs := NewRunsHandler(cfg.BaseContext, cfg.Runs, errs, logger)
	observations := NewObservationsHandler(cfg.Observations, errs, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)

	// Scrapes stay out of the request log
	r.Handle("/metrics", metrics)

	r.Group(func(r chi.Router) {
		r.Use(middleware.StructuredLogger(logger))
		r.Use(errs.Recoverer)
		r.Use(chimiddleware.Timeout(requestTimeout))
		r.Use(middleware.SecurityHeaders)

		r.Get("/healthz", health.HealthCheck)
		r.Get("/readyz", health.ReadinessCheck)
		r.Mount("/runs", runs.Routes())
		r.Get("/observations", observations.List)
	})

	r.NotFound(errs.NotFound)
	r.MethodNotAllowed(errs.MethodNotAllowed)

	return &Router{Router: r, runs: runs}
}

// Wait blocks until runs started over HTTP have returned
func (rt *Router) Wait() {
	rt.runs.Wait()
}
