package telemetry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"forecastpipe/pkg/contracts/domain"
)

func observation(model, p string, mape float64) domain.MetricObservation {
	return domain.MetricObservation{
		Timestamp:                time.Date(2020, 4, 6, 0, 0, 0, 0, time.UTC),
		ModelName:                model,
		QuantileLabel:            p,
		MeanAbsolutePercentError: mape,
	}
}

type recordingSink struct {
	got []domain.MetricObservation
	err error
}

func (r *recordingSink) PutMetric(_ context.Context, _ string, obs domain.MetricObservation) error {
	r.got = append(r.got, obs)
	return r.err
}

func TestGaugeSink_RecordsLastValuePerSeries(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(ctx)

	sink, err := NewGaugeSink(provider.Meter("test"))
	require.NoError(t, err)

	require.NoError(t, sink.PutMetric(ctx, "covid", observation("m1", "0.5", 3)))
	require.NoError(t, sink.PutMetric(ctx, "covid", observation("m1", "0.5", 7.5)))
	require.NoError(t, sink.PutMetric(ctx, "covid", observation("m1", "0.9", 1)))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)

	m := rm.ScopeMetrics[0].Metrics[0]
	assert.Equal(t, GaugeInstrument, m.Name)
	gauge, ok := m.Data.(metricdata.Gauge[float64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 2)

	values := map[string]float64{}
	for _, dp := range gauge.DataPoints {
		p, _ := dp.Attributes.Value(attribute.Key(AttrQuantile))
		ns, _ := dp.Attributes.Value(attribute.Key(AttrNamespace))
		model, _ := dp.Attributes.Value(attribute.Key(AttrModelConfig))
		assert.Equal(t, "covid", ns.AsString())
		assert.Equal(t, "m1", model.AsString())
		values[p.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]float64{"0.5": 7.5, "0.9": 1}, values)
}

func TestSQLiteRecorder_PutAndQuery(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "metrics.db"), logger)
	require.NoError(t, err)
	defer rec.Close()

	require.NoError(t, rec.PutMetric(ctx, "covid", observation("m1", "0.1", 2)))
	require.NoError(t, rec.PutMetric(ctx, "covid", observation("m1", "0.5", 7.5)))
	require.NoError(t, rec.PutMetric(ctx, "covid", observation("m2", "0.5", 4)))

	got, err := rec.Observations(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, observation("m1", "0.1", 2), got[0])
	assert.Equal(t, observation("m1", "0.5", 7.5), got[1])

	all, err := rec.Observations(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSQLiteRecorder_ReopenKeepsRows(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "metrics.db")

	rec, err := NewSQLiteRecorder(path, nil)
	require.NoError(t, err)
	require.NoError(t, rec.PutMetric(ctx, "covid", observation("m1", "0.5", 1)))
	require.NoError(t, rec.Close())

	rec, err = NewSQLiteRecorder(path, nil)
	require.NoError(t, err)
	defer rec.Close()

	got, err := rec.Observations(ctx, "")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestMultiSink_ForwardsToAllAndJoinsErrors(t *testing.T) {
	first := &recordingSink{err: errors.New("first down")}
	second := &recordingSink{}

	sink := Combine(first, nil, second)
	err := sink.PutMetric(context.Background(), "ns", observation("m", "0.5", 1))

	assert.EqualError(t, err, "first down")
	assert.Len(t, first.got, 1)
	assert.Len(t, second.got, 1)
}

func TestCombine(t *testing.T) {
	assert.Equal(t, NoopSink{}, Combine())
	only := &recordingSink{}
	assert.Same(t, only, Combine(nil, only))
	assert.NoError(t, NoopSink{}.PutMetric(context.Background(), "", domain.MetricObservation{}))
}
