package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	apierrors "forecastpipe/internal/errors"
	"forecastpipe/internal/series"
	api "forecastpipe/pkg/contracts/api/v1"
	"forecastpipe/pkg/contracts/domain"
)

// ObservationsHandler serves recorded forecast accuracy observations
type ObservationsHandler struct {
	source ObservationSource
	errors *apierrors.ErrorHandler
	logger *slog.Logger
}

// NewObservationsHandler creates the handler. A nil source answers 503.
func NewObservationsHandler(source ObservationSource, errs *apierrors.ErrorHandler, logger *slog.Logger) *ObservationsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ObservationsHandler{
		source: source,
		errors: errs,
		logger: logger.With(slog.String("handler", "observations")),
	}
}

// List handles GET /observations?model=&from=&to=. No model lists every model.
func (h *ObservationsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.source == nil {
		h.errors.HandleError(w, r, apierrors.NewWithDetails(apierrors.ErrServiceUnavailable.StatusCode,
			apierrors.ErrServiceUnavailable.ErrorCode, "Observation recording is disabled", "telemetry.sqlite_path is not set"))
		return
	}

	q := r.URL.Query()
	req := api.ObservationsRequest{
		Model: strings.TrimSpace(q.Get("model")),
		From:  q.Get("from"),
		To:    q.Get("to"),
	}
	if err := validate.Struct(req); err != nil {
		h.errors.HandleError(w, r, apierrors.NewWithDetails(apierrors.ErrInvalidParameter.StatusCode,
			apierrors.ErrInvalidParameter.ErrorCode, apierrors.ErrInvalidParameter.Message, err.Error()))
		return
	}

	obs, err := h.source.Observations(r.Context(), req.Model)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	out := make([]domain.MetricObservation, 0, len(obs))
	for _, o := range obs {
		// ISO dates compare lexically
		day := series.FormatDate(o.Timestamp)
		if (req.From != "" && day < req.From) || (req.To != "" && day > req.To) {
			continue
		}
		out = append(out, o)
	}
	render.JSON(w, r, out)
}
