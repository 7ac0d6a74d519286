package domain

import "time"

// MetricName is the name every forecast accuracy observation is published under.
const MetricName = "ForecastPerformance"

// MetricObservation is the accuracy of one quantile of one forecast on one day.
type MetricObservation struct {
	Timestamp                time.Time `json:"timestamp"`
	ModelName                string    `json:"model_name" validate:"required"`
	QuantileLabel            string    `json:"quantile_label" validate:"required"`
	MeanAbsolutePercentError float64   `json:"mean_absolute_percent_error" validate:"min=0"`
}

// ExportStatus is the result of processing one forecast export.
type ExportStatus string

const (
	ExportStatusArchived  ExportStatus = "archived"
	ExportStatusEvaluated ExportStatus = "evaluated"
	ExportStatusPending   ExportStatus = "pending"
	ExportStatusSkipped   ExportStatus = "skipped"
	ExportStatusFailed    ExportStatus = "failed"
)

// ExportOutcome reports what happened to a single export during an
// evaluation batch. Failures are reported here instead of aborting the batch.
type ExportOutcome struct {
	ExportKey    string       `json:"export_key"`
	DatasetGroup string       `json:"dataset_group"`
	Status       ExportStatus `json:"status"`
	Observations int          `json:"observations"`
	Message      string       `json:"message,omitempty"`
	Error        string       `json:"error,omitempty"`
	ProcessedAt  time.Time    `json:"processed_at"`
}
