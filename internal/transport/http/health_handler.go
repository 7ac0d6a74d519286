package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"forecastpipe/internal/config"
	"forecastpipe/pkg/contracts"
	api "forecastpipe/pkg/contracts/api/v1"
)

const readinessTimeout = 5 * time.Second

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	checks  []ReadinessCheck
	started time.Time
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(checks []ReadinessCheck, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		checks:  checks,
		started: time.Now(),
		logger:  logger.With(slog.String("handler", "health")),
	}
}

// HealthCheck handles GET /healthz
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, api.HealthResponse{
		Status:  "ok",
		Service: config.AppName,
		Version: config.AppVersion,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
		Build:   contracts.GetVersionInfo(),
	})
}

// ReadinessCheck handles GET /readyz. Any failing check turns the answer
// into a 503.
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	resp := api.ReadinessResponse{Status: "ready", Checks: make(map[string]string, len(h.checks))}
	for _, c := range h.checks {
		if err := c.Check(ctx); err != nil {
			h.logger.WarnContext(ctx, "readiness check failed",
				slog.String("check", c.Name),
				slog.String("error", err.Error()))
			resp.Checks[c.Name] = err.Error()
			resp.Status = "not_ready"
			continue
		}
		resp.Checks[c.Name] = "ok"
	}

	if resp.Status != "ready" {
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, resp)
}
