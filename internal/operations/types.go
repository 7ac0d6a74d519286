package operations

import (
	"time"
)

// Step identifiers
const (
	StepIDTransform = "transform"
	StepIDEvaluate  = "evaluate"
)

// Step names
const (
	StepNameTransform = "Raw Data Transform"
	StepNameEvaluate  = "Forecast Evaluation"
)

// Result keys steps write into the run state
const (
	ResultKeyFeedKey        = "feed_key"
	ResultKeyRawArchiveKey  = "raw_archive_key"
	ResultKeyDatasetGroup   = "dataset_group"
	ResultKeyDaysWritten    = "days_written"
	ResultKeyItemCount      = "item_count"
	ResultKeyTargetRows     = "target_rows"
	ResultKeyRelatedRows    = "related_rows"
	ResultKeySyntheticRows  = "synthetic_rows"
	ResultKeyExportOutcomes = "export_outcomes"
	ResultKeyExportsFailed  = "exports_failed"
)

// Triggers recorded on a run
const (
	TriggerManual   = "manual"
	TriggerSchedule = "schedule"
	TriggerStartup  = "startup"
)

// Default timeouts
const (
	DefaultStepTimeout      = 30 * time.Minute
	DefaultTransformTimeout = 30 * time.Minute
	DefaultEvaluateTimeout  = 15 * time.Minute
)

// RetryConfig defines retry behavior for steps
type RetryConfig struct {
	MaxAttempts  int           `json:"max_attempts"`
	InitialDelay time.Duration `json:"initial_delay"`
	MaxDelay     time.Duration `json:"max_delay"`
	Multiplier   float64       `json:"multiplier"`
}

// NewRetryConfig returns the default retry configuration
func NewRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// RunRequest asks the manager to execute steps. An empty Steps list runs
// every registered step in registration order.
type RunRequest struct {
	ID      string   `json:"id,omitempty"`
	Steps   []string `json:"steps,omitempty"`
	Trigger string   `json:"trigger,omitempty"`
}

// RunResponse is the finished (or in-flight) view of a run.
type RunResponse struct {
	ID        string         `json:"id"`
	TraceID   string         `json:"trace_id"`
	Trigger   string         `json:"trigger"`
	Status    RunStatus      `json:"status"`
	StartTime time.Time      `json:"start_time"`
	EndTime   *time.Time     `json:"end_time,omitempty"`
	Duration  time.Duration  `json:"duration"`
	Steps     []StepSnapshot `json:"steps"`
	Results   map[string]any `json:"results,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// StepSnapshot is an immutable copy of a StepState.
type StepSnapshot struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    StepStatus `json:"status"`
	Attempts  int        `json:"attempts"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Message   string     `json:"message,omitempty"`
	Error     string     `json:"error,omitempty"`
}
