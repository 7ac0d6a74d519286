// Package operations runs the pipeline's steps.
//
// A Manager executes registered Steps sequentially for each RunRequest,
// applying per-step timeouts and retrying errors marked retryable. Every run
// gets a run id and a trace id, a span per run and per step attempt, and a
// RunResponse that is kept in a bounded in-memory history for the status
// server.
//
// Two steps are provided:
//
//   - TransformStep reads the raw feed, archives it, writes the per-day
//     target and related files inside the retention window, and writes the
//     dataset-group history with its run configuration.
//   - EvaluateStep scans forecast exports, publishes their accuracy and
//     archives exports whose horizon has realized data.
//
// Failures are reported as *OperationError values typed validation,
// execution, timeout, cancellation, fatal, not_found or invalid_state.
package operations
