package http

import (
	"context"
	"errors"

	apierrors "forecastpipe/internal/errors"
	"forecastpipe/internal/operations"
	"forecastpipe/pkg/contracts/domain"
)

// RunService is what the runs endpoints need from the orchestrator.
// *operations.Manager satisfies it.
type RunService interface {
	Execute(ctx context.Context, req operations.RunRequest) (*operations.RunResponse, error)
	GetRun(id string) (*operations.RunResponse, error)
	ListRuns() []*operations.RunResponse
	Busy(stepIDs []string) (string, bool)
}

// ObservationSource lists recorded metric observations for a model.
// *telemetry.SQLiteRecorder satisfies it.
type ObservationSource interface {
	Observations(ctx context.Context, modelName string) ([]domain.MetricObservation, error)
}

// ReadinessCheck is one named dependency probe for /readyz
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// toAPIError maps orchestration errors onto the API envelope
func toAPIError(err error) error {
	var opErr *operations.OperationError
	if !errors.As(err, &opErr) {
		return err
	}
	switch opErr.Type {
	case operations.ErrorTypeNotFound:
		if errors.Is(err, operations.ErrRunNotFound) {
			return apierrors.ErrRunNotFound
		}
		return apierrors.NotFoundError(opErr.Step)
	case operations.ErrorTypeInvalidState:
		return apierrors.NewWithDetails(apierrors.ErrRunInProgress.StatusCode,
			apierrors.ErrRunInProgress.ErrorCode, apierrors.ErrRunInProgress.Message, opErr.Step)
	case operations.ErrorTypeValidation:
		return apierrors.InvalidRequestWithError(err)
	case operations.ErrorTypeTimeout:
		return apierrors.ErrTimeout
	default:
		return err
	}
}
