// Package telemetry publishes forecast accuracy observations.
package telemetry

import (
	"context"
	"errors"

	"forecastpipe/pkg/contracts/domain"
)

// Sink receives metric observations under a namespace.
type Sink interface {
	PutMetric(ctx context.Context, namespace string, obs domain.MetricObservation) error
}

// NoopSink drops every observation. It is used when no sink is configured.
type NoopSink struct{}

func (NoopSink) PutMetric(context.Context, string, domain.MetricObservation) error { return nil }

// MultiSink forwards each observation to every sink. Every sink is tried;
// the failures are joined.
type MultiSink []Sink

func (m MultiSink) PutMetric(ctx context.Context, namespace string, obs domain.MetricObservation) error {
	var errs []error
	for _, s := range m {
		if err := s.PutMetric(ctx, namespace, obs); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Combine returns a sink for the non-nil sinks given.
func Combine(sinks ...Sink) Sink {
	var out MultiSink
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	switch len(out) {
	case 0:
		return NoopSink{}
	case 1:
		return out[0]
	}
	return out
}
