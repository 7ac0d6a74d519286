package api

import "forecastpipe/pkg/contracts"

// RunStartResponse acknowledges an accepted run
type RunStartResponse struct {
	ID      string   `json:"id"`
	TraceID string   `json:"trace_id"`
	Steps   []string `json:"steps,omitempty"`
	Status  string   `json:"status"`
}

// HealthResponse is the body of /healthz
type HealthResponse struct {
	Status  string                `json:"status"`
	Service string                `json:"service"`
	Version string                `json:"version"`
	Uptime  string                `json:"uptime"`
	Build   contracts.VersionInfo `json:"build"`
}

// ReadinessResponse is the body of /readyz
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
