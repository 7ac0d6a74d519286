// Package app wires the pipeline's components together and manages their
// lifecycle.
//
// # Initialization Flow
//
//  1. Build the object store (filesystem or memory, optionally rate limited)
//  2. Initialize OpenTelemetry and the pipeline instruments
//  3. Build the telemetry sinks (gauge, SQLite recorder)
//  4. Register the transform and evaluate steps on the operations manager
//
// # Modes
//
// RunOnce executes steps a single time and returns the run response; this
// backs the transform and evaluate CLI modes. Serve runs the cron scheduler
// and the status server together until the context is cancelled.
//
// The app does not call os.Exit; errors are returned to main.
package app
