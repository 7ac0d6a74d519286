package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"forecastpipe/internal/infrastructure"
)

// Manager orchestrates run execution and remembers recent runs
type Manager struct {
	registry *Registry
	config   *Config
	tracer   *RunTracer
	logger   *slog.Logger

	mu      sync.RWMutex
	active  map[string]*RunState
	running map[string]string // step id -> run id
	history []*RunResponse    // newest first
}

// NewManager creates a new run manager
func NewManager(registry *Registry, config *Config, tracer *RunTracer, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}
	if tracer == nil {
		tracer = NewRunTracer(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		registry: registry,
		config:   config,
		tracer:   tracer,
		logger:   logger.With(slog.String("component", "operations")),
		active:   make(map[string]*RunState),
		running:  make(map[string]string),
	}
}

// RegisterStep registers a Step with the manager
func (m *Manager) RegisterStep(step Step) error {
	return m.registry.Register(step)
}

// GetRegistry returns the registry for accessing registered steps
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *Config {
	return m.config
}

// Execute runs the requested steps sequentially. The returned response is
// also kept in the run history. A failed step stops the run unless
// ContinueOnError is set; the remaining steps are marked skipped.
func (m *Manager) Execute(ctx context.Context, req RunRequest) (*RunResponse, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Trigger == "" {
		req.Trigger = TriggerManual
	}

	ctx = infrastructure.EnsureTraceID(ctx)
	state := NewRunState(req.ID, req.Trigger)
	state.TraceID = infrastructure.GetTraceID(ctx)

	steps, err := m.registry.Resolve(req.Steps)
	if err != nil {
		m.logRunError(ctx, req.ID, err)
		state.Fail(err)
		resp := state.Response()
		m.remember(resp)
		return resp, err
	}
	if len(steps) == 0 {
		err := NewValidationError("", "no steps registered")
		state.Fail(err)
		resp := state.Response()
		m.remember(resp)
		return resp, err
	}

	stepIDs := make([]string, len(steps))
	for i, step := range steps {
		stepIDs[i] = step.ID()
		state.AddStep(NewStepState(step.ID(), step.Name()))
	}

	if err := m.acquire(req.ID, stepIDs); err != nil {
		m.logRunError(ctx, req.ID, err)
		state.Fail(err)
		resp := state.Response()
		m.remember(resp)
		return resp, err
	}
	defer m.release(stepIDs)

	m.storeActive(state)
	runType := strings.Join(stepIDs, "+")
	ctx, span := m.tracer.TraceRun(ctx, req.ID, req.Trigger)

	state.Start()
	m.logRunStart(ctx, state, stepIDs)

	runErr := m.executeSequential(ctx, state, steps)
	switch {
	case runErr == nil:
		state.Complete()
	case GetErrorType(runErr) == ErrorTypeCancellation:
		state.Cancel(runErr)
	default:
		state.Fail(runErr)
	}

	duration := state.Duration()
	m.tracer.RecordRunCompletion(ctx, span, runType, duration, runErr)
	if runErr != nil {
		m.logRunError(ctx, req.ID, runErr)
	}
	resp := state.Response()
	m.logRunComplete(ctx, req.ID, duration, resp.Status)

	m.finishActive(resp)
	return resp, runErr
}

// executeSequential executes steps one by one
func (m *Manager) executeSequential(ctx context.Context, state *RunState, steps []Step) error {
	var firstErr error
	for i, step := range steps {
		if ctx.Err() != nil {
			m.skipRemaining(state, steps[i:], "run cancelled")
			return NewCancellationError(step.ID())
		}

		err := m.executeStep(ctx, state, step)
		if err == nil {
			continue
		}
		m.logStepError(ctx, state.ID, step.ID(), err)
		if GetErrorType(err) == ErrorTypeCancellation {
			m.skipRemaining(state, steps[i+1:], "run cancelled")
			return err
		}
		if firstErr == nil {
			firstErr = err
		}
		if !m.config.ContinueOnError {
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("previous step %s failed", step.ID()))
			return err
		}
		m.logger.WarnContext(ctx, "step_failed_continuing",
			slog.String("run_id", state.ID),
			slog.String("step", step.ID()))
	}
	return firstErr
}

// executeStep executes a single Step with retry logic
func (m *Manager) executeStep(ctx context.Context, state *RunState, step Step) error {
	stepState := state.GetStep(step.ID())
	if stepState == nil {
		return NewFatalError("step state not found", nil)
	}

	if err := step.Validate(state); err != nil {
		verr := NewValidationError(step.ID(), err.Error())
		stepState.Fail(verr)
		return verr
	}

	timeout := m.config.GetStepTimeout(step.ID())
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	retry := m.config.RetryConfig
	maxAttempts := max(retry.MaxAttempts, 1)

	for attempt := 1; ; attempt++ {
		stepState.Start()
		m.logStepStart(stepCtx, state.ID, step.ID(), attempt)

		spanCtx, span := m.tracer.TraceStep(stepCtx, state.ID, step.ID(), attempt)
		start := time.Now()
		err := step.Execute(spanCtx, state)
		duration := time.Since(start)

		if err == nil && stepCtx.Err() == nil {
			m.tracer.RecordStepCompletion(stepCtx, span, step.ID(), duration, nil)
			stepState.Complete(fmt.Sprintf("completed in %s", duration.Round(time.Millisecond)))
			m.logStepComplete(stepCtx, state.ID, step.ID(), duration)
			return nil
		}

		if ctxErr := m.contextError(ctx, stepCtx, step.ID(), timeout); ctxErr != nil {
			if err == nil {
				err = ctxErr
			} else {
				err = fmt.Errorf("%w: %w", ctxErr, err)
			}
			m.tracer.RecordStepCompletion(stepCtx, span, step.ID(), duration, err)
			stepState.Fail(err)
			return ctxErr
		}
		m.tracer.RecordStepCompletion(stepCtx, span, step.ID(), duration, err)

		if !IsRetryable(err) || attempt >= maxAttempts {
			wrapped := WrapError(err, step.ID(), "step execution failed")
			stepState.Fail(wrapped)
			return wrapped
		}

		delay := m.calculateRetryDelay(attempt, retry)
		m.logger.WarnContext(stepCtx, "step_retry",
			slog.String("run_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxAttempts),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))

		select {
		case <-time.After(delay):
		case <-stepCtx.Done():
			ctxErr := m.contextError(ctx, stepCtx, step.ID(), timeout)
			stepState.Fail(ctxErr)
			return ctxErr
		}
	}
}

// contextError maps an ended context to a cancellation or timeout error.
func (m *Manager) contextError(parent, stepCtx context.Context, stepID string, timeout time.Duration) *OperationError {
	if parent.Err() != nil {
		return NewCancellationError(stepID)
	}
	if errors.Is(stepCtx.Err(), context.DeadlineExceeded) {
		return NewTimeoutError(stepID, timeout.String())
	}
	return nil
}

// calculateRetryDelay grows the delay geometrically up to MaxDelay
func (m *Manager) calculateRetryDelay(attempt int, config RetryConfig) time.Duration {
	multiplier := config.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	delay := time.Duration(float64(config.InitialDelay) * math.Pow(multiplier, float64(attempt-1)))
	if config.MaxDelay > 0 && delay > config.MaxDelay {
		delay = config.MaxDelay
	}
	return delay
}

func (m *Manager) skipRemaining(state *RunState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStep(step.ID()); s != nil && s.GetStatus() == StepStatusPending {
			s.Skip(reason)
		}
	}
}

// acquire reserves the steps for runID or reports which run holds them
func (m *Manager) acquire(runID string, stepIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range stepIDs {
		if holder, busy := m.running[id]; busy {
			return &OperationError{
				Type:    ErrorTypeInvalidState,
				Step:    id,
				Message: ErrRunInProgress.Message,
				Cause:   fmt.Errorf("held by run %s", holder),
			}
		}
	}
	for _, id := range stepIDs {
		m.running[id] = runID
	}
	return nil
}

func (m *Manager) release(stepIDs []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range stepIDs {
		delete(m.running, id)
	}
}

func (m *Manager) storeActive(state *RunState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active[state.ID] = state
}

func (m *Manager) finishActive(resp *RunResponse) {
	m.mu.Lock()
	delete(m.active, resp.ID)
	m.mu.Unlock()
	m.remember(resp)
}

// remember prepends resp to the bounded history
func (m *Manager) remember(resp *RunResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	limit := max(m.config.HistoryLimit, 1)
	m.history = append([]*RunResponse{resp}, m.history...)
	if len(m.history) > limit {
		m.history = m.history[:limit]
	}
}

// GetRun returns an in-flight or remembered run
func (m *Manager) GetRun(id string) (*RunResponse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if state, ok := m.active[id]; ok {
		return state.Response(), nil
	}
	for _, resp := range m.history {
		if resp.ID == id {
			return resp, nil
		}
	}
	return nil, ErrRunNotFound
}

// ListRuns returns in-flight runs followed by finished runs, newest first
func (m *Manager) ListRuns() []*RunResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := make([]*RunResponse, 0, len(m.active)+len(m.history))
	for _, state := range m.active {
		runs = append(runs, state.Response())
	}
	return append(runs, m.history...)
}

// Busy reports the id of a run currently holding one of stepIDs. An empty
// list checks every registered step.
func (m *Manager) Busy(stepIDs []string) (string, bool) {
	if len(stepIDs) == 0 {
		stepIDs = m.registry.ListIDs()
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range stepIDs {
		if holder, busy := m.running[id]; busy {
			return holder, true
		}
	}
	return "", false
}
