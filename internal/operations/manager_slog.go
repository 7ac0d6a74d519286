package operations

import (
	"context"
	"log/slog"
	"time"
)

// logRunStart logs the start of a run
func (m *Manager) logRunStart(ctx context.Context, state *RunState, stepIDs []string) {
	m.logger.InfoContext(ctx, "run_start",
		slog.String("run_id", state.ID),
		slog.String("trigger", state.Trigger),
		slog.Any("steps", stepIDs))
}

// logRunComplete logs the completion of a run
func (m *Manager) logRunComplete(ctx context.Context, runID string, duration time.Duration, status RunStatus) {
	m.logger.InfoContext(ctx, "run_complete",
		slog.String("run_id", runID),
		slog.String("status", string(status)),
		slog.Duration("duration", duration))
}

// logRunError logs a run error
func (m *Manager) logRunError(ctx context.Context, runID string, err error) {
	errorMsg := "unknown error"
	if err != nil {
		errorMsg = err.Error()
	}
	m.logger.ErrorContext(ctx, "run_error",
		slog.String("run_id", runID),
		slog.String("error", errorMsg))
}

// logStepStart logs the start of a step attempt
func (m *Manager) logStepStart(ctx context.Context, runID, stepID string, attempt int) {
	m.logger.InfoContext(ctx, "step_start",
		slog.String("run_id", runID),
		slog.String("step", stepID),
		slog.Int("attempt", attempt))
}

// logStepComplete logs the completion of a step
func (m *Manager) logStepComplete(ctx context.Context, runID, stepID string, duration time.Duration) {
	m.logger.InfoContext(ctx, "step_complete",
		slog.String("run_id", runID),
		slog.String("step", stepID),
		slog.Duration("duration", duration))
}

// logStepError logs a step error
func (m *Manager) logStepError(ctx context.Context, runID, stepID string, err error) {
	errorMsg := "unknown error"
	if err != nil {
		errorMsg = err.Error()
	}
	m.logger.ErrorContext(ctx, "step_error",
		slog.String("run_id", runID),
		slog.String("step", stepID),
		slog.String("error_type", string(GetErrorType(err))),
		slog.String("error", errorMsg))
}
