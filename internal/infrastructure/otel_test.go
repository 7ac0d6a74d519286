package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"forecastpipe/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInitializeOTel_Disabled(t *testing.T) {
	cfg := OTelConfigFrom(config.TelemetryConfig{MetricExporter: "none", TraceExporter: "none", Environment: "test"})

	providers, err := InitializeOTel(cfg, quietLogger())
	require.NoError(t, err)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.Nil(t, providers.PrometheusHTTP)
	assert.Nil(t, providers.MeterProvider)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTel_Prometheus(t *testing.T) {
	cfg := OTelConfigFrom(config.TelemetryConfig{MetricExporter: "prometheus", TraceExporter: "none", Environment: "test", SampleRatio: 1})

	providers, err := InitializeOTel(cfg, quietLogger())
	require.NoError(t, err)
	assert.NotNil(t, providers.PrometheusHTTP)
	assert.NotNil(t, providers.MeterProvider)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestInitializeOTel_Unsupported(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{MetricExporter: "statsd", TraceExporter: "none"}, quietLogger())
	assert.Error(t, err)

	_, err = InitializeOTel(&OTelConfig{MetricExporter: "none", TraceExporter: "jaeger"}, quietLogger())
	assert.Error(t, err)
}

func TestPipelineMetrics_Record(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(ctx)

	m, err := CreatePipelineMetrics(provider.Meter("test"))
	require.NoError(t, err)

	RecordRunMetrics(ctx, m, "transform", time.Second, nil)
	RecordRunMetrics(ctx, m, "transform", time.Second, errors.New("boom"))
	RecordStepMetrics(ctx, m, "transform", time.Second, true)
	RecordExportOutcome(ctx, m, "archived")
	RecordRowsEmitted(ctx, m, "target", 12)
	RecordRowsEmitted(ctx, nil, "target", 12)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, mt := range sm.Metrics {
			if s, ok := mt.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range s.DataPoints {
					sums[mt.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(2), sums["pipeline_runs_total"])
	assert.Equal(t, int64(1), sums["forecast_export_outcomes_total"])
	assert.Equal(t, int64(12), sums["pipeline_rows_emitted_total"])
}
