package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"forecastpipe/pkg/contracts/domain"
)

// Attribute keys carried by every accuracy data point.
const (
	AttrNamespace   = "namespace"
	AttrModelConfig = "model_config"
	AttrQuantile    = "p"
)

// GaugeInstrument is the OpenTelemetry name of the accuracy gauge.
const GaugeInstrument = "forecast_performance"

// GaugeSink records observations on an OpenTelemetry gauge, which the
// Prometheus exporter serves on /metrics.
type GaugeSink struct {
	gauge metric.Float64Gauge
}

// NewGaugeSink registers the accuracy gauge on meter.
func NewGaugeSink(meter metric.Meter) (*GaugeSink, error) {
	g, err := meter.Float64Gauge(
		GaugeInstrument,
		metric.WithDescription("Mean absolute percentage error of the first forecast day ("+domain.MetricName+")"),
		metric.WithUnit("%"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s gauge: %w", GaugeInstrument, err)
	}
	return &GaugeSink{gauge: g}, nil
}

func (s *GaugeSink) PutMetric(ctx context.Context, namespace string, obs domain.MetricObservation) error {
	s.gauge.Record(ctx, obs.MeanAbsolutePercentError, metric.WithAttributes(
		attribute.String(AttrNamespace, namespace),
		attribute.String(AttrModelConfig, obs.ModelName),
		attribute.String(AttrQuantile, obs.QuantileLabel),
	))
	return nil
}
