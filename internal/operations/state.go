package operations

import (
	"maps"
	"sync"
	"time"
)

// RunStatus represents the overall run status
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// RunState represents the complete state of a run
type RunState struct {
	mu sync.RWMutex

	ID        string
	TraceID   string
	Trigger   string
	Status    RunStatus
	StartTime time.Time
	EndTime   *time.Time

	steps []*StepState

	// results passed between steps and reported with the run
	results map[string]any

	Error error
}

// NewRunState creates a new run state
func NewRunState(id, trigger string) *RunState {
	return &RunState{
		ID:        id,
		Trigger:   trigger,
		Status:    RunStatusPending,
		StartTime: time.Now(),
		results:   make(map[string]any),
	}
}

// Start marks the run as running
func (r *RunState) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = RunStatusRunning
	r.StartTime = time.Now()
}

// Complete marks the run as completed
func (r *RunState) Complete() {
	r.finish(RunStatusCompleted, nil)
}

// Fail marks the run as failed
func (r *RunState) Fail(err error) {
	r.finish(RunStatusFailed, err)
}

// Cancel marks the run as cancelled
func (r *RunState) Cancel(err error) {
	r.finish(RunStatusCancelled, err)
}

func (r *RunState) finish(status RunStatus, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.EndTime = &now
	r.Status = status
	r.Error = err
}

// AddStep appends a step state in execution order
func (r *RunState) AddStep(state *StepState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, state)
}

// GetStep returns the state of a specific Step
func (r *RunState) GetStep(stepID string) *StepState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.steps {
		if s.ID == stepID {
			return s
		}
	}
	return nil
}

// SetResult records a value produced by a step
func (r *RunState) SetResult(key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[key] = value
}

// GetResult retrieves a value produced by an earlier step
func (r *RunState) GetResult(key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.results[key]
	return v, ok
}

// Duration returns the duration of the run
func (r *RunState) Duration() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.EndTime != nil {
		return r.EndTime.Sub(r.StartTime)
	}
	return time.Since(r.StartTime)
}

// HasFailures returns true if any Step has failed
func (r *RunState) HasFailures() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.steps {
		if s.GetStatus() == StepStatusFailed {
			return true
		}
	}
	return false
}

// Response builds a detached RunResponse from the state
func (r *RunState) Response() *RunResponse {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resp := &RunResponse{
		ID:        r.ID,
		TraceID:   r.TraceID,
		Trigger:   r.Trigger,
		Status:    r.Status,
		StartTime: r.StartTime,
		Steps:     make([]StepSnapshot, 0, len(r.steps)),
		Results:   maps.Clone(r.results),
	}
	if r.EndTime != nil {
		end := *r.EndTime
		resp.EndTime = &end
		resp.Duration = end.Sub(r.StartTime)
	} else {
		resp.Duration = time.Since(r.StartTime)
	}
	for _, s := range r.steps {
		resp.Steps = append(resp.Steps, s.Snapshot())
	}
	if r.Error != nil {
		resp.Error = r.Error.Error()
	}
	return resp
}
