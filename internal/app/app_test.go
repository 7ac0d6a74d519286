package app

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecastpipe/internal/config"
	"forecastpipe/internal/operations"
	"forecastpipe/internal/shared/testutil"
	"forecastpipe/internal/storage"
	"forecastpipe/pkg/contracts/domain"
)

var quietLogger = testutil.QuietLogger

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Backend = "memory"
	cfg.Telemetry.MetricExporter = "none"
	cfg.Telemetry.SQLitePath = filepath.Join(t.TempDir(), "metrics.db")
	cfg.Schedule.Enabled = false
	cfg.Server.Address = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = 2 * time.Second
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	a, err := New(cfg, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func seed(t *testing.T, a *Application, lines ...string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, a.Store.Put(ctx, a.Config.Pipeline.FeedKey, testutil.Feed(lines...)))
	require.NoError(t, a.Store.Put(ctx, a.Config.Pipeline.Layout.TemplateKey, []byte(testutil.ModelTemplate("covid-model", 1))))
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(nil, quietLogger())
	assert.Error(t, err)

	cfg := testConfig(t)
	cfg.Pipeline.RetentionDays = 0
	_, err = New(cfg, quietLogger())
	assert.ErrorContains(t, err, "retention days")
}

func TestNewFilesystemStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Backend = "filesystem"
	cfg.Storage.Root = filepath.Join(t.TempDir(), "objects")
	cfg.Storage.RateLimit.RPS = 1000

	a := newTestApp(t, cfg)

	_, isFile := a.Store.(*storage.FileStore)
	assert.False(t, isFile, "rate limiting wraps the file store")
	assert.Equal(t, []string{operations.StepIDTransform, operations.StepIDEvaluate}, a.Manager.GetRegistry().ListIDs())
}

func TestRunOnceEndToEnd(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	ctx := context.Background()
	seed(t, a,
		testutil.FeedRow("20200301", "NY", "10", "100"),
		testutil.FeedRow("20200302", "NY", "20", "200"),
	)

	resp, err := a.RunOnce(ctx, operations.StepIDTransform)
	require.NoError(t, err)
	assert.Equal(t, operations.RunStatusCompleted, resp.Status)
	assert.Equal(t, operations.TriggerManual, resp.Trigger)
	group := resp.Results[operations.ResultKeyDatasetGroup]
	assert.Equal(t, "covidmodel_20200301_20200302", group)

	// Forecast for 2020-03-03, then the realized value arrives
	layout := a.Config.Pipeline.Layout
	folder := layout.ExportFolder("covidmodel_20200301_20200302")
	require.NoError(t, a.Store.Put(ctx, folder+"/part-0.csv",
		[]byte("item_id,date,p10,p50\nny,2020-03-03T00:00:00Z,30,40\n")))
	require.NoError(t, a.Store.Put(ctx, folder+"/_SUCCESS", nil))
	seed(t, a,
		testutil.FeedRow("20200302", "NY", "20", "200"),
		testutil.FeedRow("20200303", "NY", "50", "500"),
	)

	resp, err = a.RunOnce(ctx)
	require.NoError(t, err)
	require.Len(t, resp.Steps, 2)
	outcomes, ok := resp.Results[operations.ResultKeyExportOutcomes].([]domain.ExportOutcome)
	require.True(t, ok)
	require.Len(t, outcomes, 1)
	assert.Equal(t, domain.ExportStatusArchived, outcomes[0].Status)

	obs, err := a.Recorder.Observations(ctx, "covid-model")
	require.NoError(t, err)
	require.Len(t, obs, 2)
	byLabel := map[string]float64{}
	for _, o := range obs {
		byLabel[o.QuantileLabel] = o.MeanAbsolutePercentError
	}
	assert.InDelta(t, 40.0, byLabel["p10"], 1e-9)
	assert.InDelta(t, 20.0, byLabel["p50"], 1e-9)

	assert.Len(t, a.Manager.ListRuns(), 2)
}

func TestServeRunsOnStartAndStops(t *testing.T) {
	cfg := testConfig(t)
	cfg.Schedule.Enabled = true
	cfg.Schedule.RunOnStart = true
	cfg.Telemetry.SQLitePath = ""
	a := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	require.Eventually(t, func() bool {
		return len(a.Manager.ListRuns()) == 2 && a.Manager.ListRuns()[0].EndTime != nil
	}, 5*time.Second, 20*time.Millisecond)

	runs := a.Manager.ListRuns()
	for _, r := range runs {
		assert.Equal(t, operations.TriggerStartup, r.Trigger)
	}
	// newest first: evaluate succeeds on an empty store, transform has no feed
	assert.Equal(t, operations.RunStatusCompleted, runs[0].Status)
	assert.Equal(t, operations.RunStatusFailed, runs[1].Status)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServeFailsOnBadAddress(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := testConfig(t)
	cfg.Server.Address = ln.Addr().String()
	a := newTestApp(t, cfg)

	err = a.Serve(context.Background())
	assert.ErrorContains(t, err, "listen on")
}
