package operations

import (
	"time"

	"forecastpipe/internal/config"
)

// DefaultHistoryLimit is how many finished runs the manager remembers.
const DefaultHistoryLimit = config.DefaultHistoryLimit

// Config represents the run execution configuration
type Config struct {
	// Step-specific timeouts
	StepTimeouts map[string]time.Duration `json:"step_timeouts"`

	// Retry configuration for steps
	RetryConfig RetryConfig `json:"retry_config"`

	// Whether to continue with later steps after a failure
	ContinueOnError bool `json:"continue_on_error"`

	// Number of finished runs kept for the status server
	HistoryLimit int `json:"history_limit"`
}

// NewConfig returns the default run configuration
func NewConfig() *Config {
	return &Config{
		StepTimeouts: map[string]time.Duration{
			StepIDTransform: DefaultTransformTimeout,
			StepIDEvaluate:  DefaultEvaluateTimeout,
		},
		RetryConfig:  NewRetryConfig(),
		HistoryLimit: DefaultHistoryLimit,
	}
}

// ConfigFrom builds the run configuration from the pipeline settings. The
// configured timeout applies to every step.
func ConfigFrom(p config.PipelineConfig) *Config {
	cfg := NewConfig()
	if p.Timeout > 0 {
		for id := range cfg.StepTimeouts {
			cfg.StepTimeouts[id] = p.Timeout
		}
	}
	if p.HistoryLimit > 0 {
		cfg.HistoryLimit = p.HistoryLimit
	}
	return cfg
}

// GetStepTimeout returns the timeout for a specific Step
func (c *Config) GetStepTimeout(stepID string) time.Duration {
	if timeout, ok := c.StepTimeouts[stepID]; ok && timeout > 0 {
		return timeout
	}
	return DefaultStepTimeout
}

// SetStepTimeout sets the timeout for a specific Step
func (c *Config) SetStepTimeout(stepID string, timeout time.Duration) {
	if c.StepTimeouts == nil {
		c.StepTimeouts = make(map[string]time.Duration)
	}
	c.StepTimeouts[stepID] = timeout
}
