// Package http implements the pipeline's status server.
//
// The server is small and read-mostly:
//
//	GET  /healthz              liveness and version
//	GET  /readyz               readiness checks
//	GET  /metrics              Prometheus exposition of the OpenTelemetry meters
//	GET  /runs                 run history, in-flight runs first
//	GET  /runs/{id}            one run
//	POST /runs                 start a run asynchronously, returns 202
//	GET  /observations?model=  recorded forecast accuracy observations
//
// Errors are rendered with the internal/errors envelope.
package http
