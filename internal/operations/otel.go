package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"forecastpipe/internal/infrastructure"
)

const (
	TracerName = "forecastpipe.operations"
)

// RunTracer provides OpenTelemetry instrumentation for runs and steps
type RunTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewRunTracer creates a tracer. Metrics may be nil, in which case only spans
// are produced.
func NewRunTracer(metrics *infrastructure.PipelineMetrics) *RunTracer {
	return &RunTracer{
		tracer:  otel.Tracer(TracerName),
		metrics: metrics,
	}
}

// Metrics returns the pipeline instruments, possibly nil
func (rt *RunTracer) Metrics() *infrastructure.PipelineMetrics {
	if rt == nil {
		return nil
	}
	return rt.metrics
}

// TraceRun creates a span for the entire run
func (rt *RunTracer) TraceRun(ctx context.Context, runID, trigger string) (context.Context, trace.Span) {
	return rt.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("run.trigger", trigger),
		),
	)
}

// TraceStep creates a span for an individual step attempt
func (rt *RunTracer) TraceStep(ctx context.Context, runID, stepID string, attempt int) (context.Context, trace.Span) {
	return rt.tracer.Start(ctx, fmt.Sprintf("pipeline.step.%s", stepID),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("step.id", stepID),
			attribute.Int("step.attempt", attempt),
		),
	)
}

// RecordRunCompletion ends the run span and records run metrics
func (rt *RunTracer) RecordRunCompletion(ctx context.Context, span trace.Span, runType string, duration time.Duration, err error) {
	span.SetAttributes(attribute.Float64("run.duration_seconds", duration.Seconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
	infrastructure.RecordRunMetrics(ctx, rt.metrics, runType, duration, err)
}

// RecordStepCompletion ends a step span and records step metrics
func (rt *RunTracer) RecordStepCompletion(ctx context.Context, span trace.Span, stepID string, duration time.Duration, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error.type", string(GetErrorType(err))))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
	infrastructure.RecordStepMetrics(ctx, rt.metrics, stepID, duration, err == nil)
}
