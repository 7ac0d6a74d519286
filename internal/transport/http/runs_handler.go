package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apierrors "forecastpipe/internal/errors"
	"forecastpipe/internal/infrastructure"
	"forecastpipe/internal/middleware"
	"forecastpipe/internal/operations"
	api "forecastpipe/pkg/contracts/api/v1"
)

var validate = validator.New()

// RunsHandler serves the run history and starts manual runs
type RunsHandler struct {
	service RunService
	errors  *apierrors.ErrorHandler
	logger  *slog.Logger

	// runs started over HTTP outlive their request and inherit baseCtx
	baseCtx context.Context
	wg      sync.WaitGroup
}

// NewRunsHandler creates a runs handler. Cancelling baseCtx cancels the runs
// it started.
func NewRunsHandler(baseCtx context.Context, service RunService, errs *apierrors.ErrorHandler, logger *slog.Logger) *RunsHandler {
	if service == nil {
		panic("service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RunsHandler{
		service: service,
		errors:  errs,
		logger:  logger.With(slog.String("handler", "runs")),
		baseCtx: baseCtx,
	}
}

// startRunBody binds and validates api.RunStartRequest
type startRunBody struct {
	api.RunStartRequest
}

// Bind implements the render.Binder interface for request validation
func (b *startRunBody) Bind(r *http.Request) error {
	return validate.Struct(b.RunStartRequest)
}

// Routes returns a chi router for the runs endpoints
func (h *RunsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListRuns)
	r.Post("/", h.StartRun)
	r.Get("/{id}", h.GetRun)
	return r
}

// ListRuns handles GET /runs?status=&limit=
func (h *RunsHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	req, err := parseRunList(r)
	if err != nil {
		h.errors.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	runs := make([]*operations.RunResponse, 0)
	for _, run := range h.service.ListRuns() {
		if req.Status != "" && string(run.Status) != req.Status {
			continue
		}
		runs = append(runs, run)
		if req.Limit > 0 && len(runs) == req.Limit {
			break
		}
	}
	render.JSON(w, r, runs)
}

func parseRunList(r *http.Request) (api.RunListRequest, error) {
	q := r.URL.Query()
	req := api.RunListRequest{Status: q.Get("status")}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return req, fmt.Errorf("invalid limit %q", s)
		}
		req.Limit = n
	}
	return req, validate.Struct(req)
}

// GetRun handles GET /runs/{id}
func (h *RunsHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.GetRun(chi.URLParam(r, "id"))
	if err != nil {
		h.errors.HandleError(w, r, toAPIError(err))
		return
	}
	render.JSON(w, r, run)
}

// StartRun handles POST /runs. The run executes in the background; poll
// GET /runs/{id} for its outcome.
func (h *RunsHandler) StartRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body := &startRunBody{}
	bind := body.Bind
	if r.ContentLength != 0 {
		bind = func(r *http.Request) error { return render.Bind(r, body) }
	}
	if err := bind(r); err != nil {
		h.errors.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	steps := body.Steps

	if holder, busy := h.service.Busy(steps); busy {
		h.errors.HandleError(w, r, apierrors.NewWithDetails(apierrors.ErrRunInProgress.StatusCode,
			apierrors.ErrRunInProgress.ErrorCode, apierrors.ErrRunInProgress.Message,
			map[string]string{"run_id": holder}))
		return
	}

	runID := uuid.NewString()
	traceID := middleware.GetRequestID(ctx)
	runReq := operations.RunRequest{ID: runID, Steps: steps, Trigger: operations.TriggerManual}

	h.logger.InfoContext(ctx, "run accepted",
		slog.String("run_id", runID),
		slog.Any("steps", steps))

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		runCtx := infrastructure.WithTraceID(h.baseCtx, traceID)
		if _, err := h.service.Execute(runCtx, runReq); err != nil {
			h.logger.ErrorContext(runCtx, "manual run failed",
				slog.String("run_id", runID),
				slog.String("error", err.Error()))
		}
	}()

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, api.RunStartResponse{ID: runID, TraceID: traceID, Steps: steps, Status: "accepted"})
}

// Wait blocks until every run started by this handler has returned
func (h *RunsHandler) Wait() {
	h.wg.Wait()
}
