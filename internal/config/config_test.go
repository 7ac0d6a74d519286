package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecastpipe/internal/dataprocessing"
	"forecastpipe/internal/exporter"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(ConfigFileEnv, "")

	cfg, err := Load("")
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Storage, cfg.Storage)
	assert.Equal(t, def.Pipeline, cfg.Pipeline)
	assert.Equal(t, def.Schedule, cfg.Schedule)
	assert.Equal(t, def.Server, cfg.Server)
	assert.Equal(t, exporter.DefaultLayout(), cfg.Pipeline.Layout)
	assert.Equal(t, 5, cfg.Pipeline.RetentionDays)
	assert.Equal(t, "0 0 6 * * *", cfg.Schedule.Transform)
	assert.Equal(t, "0 30 6 * * *", cfg.Schedule.Evaluate)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfigFile(t, `
storage:
  backend: memory
pipeline:
  retention_days: 7
  columns:
    related: 4
  layout:
    exports_prefix: Exports
schedule:
  transform: "0 15 5 * * *"
server:
  read_timeout: 5s
telemetry:
  sqlite_path: metrics.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, 7, cfg.Pipeline.RetentionDays)
	assert.Equal(t, 4, cfg.Pipeline.Columns.Related)
	assert.Equal(t, 2, cfg.Pipeline.Columns.Target)
	assert.Equal(t, "Exports", cfg.Pipeline.Layout.ExportsPrefix)
	assert.Equal(t, "covid-19-daily", cfg.Pipeline.Layout.DailyPrefix)
	assert.Equal(t, "0 15 5 * * *", cfg.Schedule.Transform)
	assert.Equal(t, DefaultEvaluateSchedule, cfg.Schedule.Evaluate)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "metrics.db", cfg.Telemetry.SQLitePath)
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfigFile(t, "pipeline:\n  retention_days: 7\ntelemetry:\n  namespace: FromFile\n")
	t.Setenv("FCP_PIPELINE_RETENTION_DAYS", "9")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Pipeline.RetentionDays)
	assert.Equal(t, "FromFile", cfg.Telemetry.Namespace)
}

func TestLoad_ConfigFileFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(ConfigFileEnv, writeConfigFile(t, "storage:\n  root: /srv/forecast\n"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/srv/forecast", cfg.Storage.Root)
}

func TestLoad_Errors(t *testing.T) {
	t.Chdir(t.TempDir())
	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: filepath.Join(t.TempDir(), "absent.yaml")},
		{name: "unknown key", path: writeConfigFile(t, "pipeline:\n  retention: 3\n")},
		{name: "invalid value", path: writeConfigFile(t, "pipeline:\n  retention_days: 0\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			assert.Error(t, err)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "retention zero", mutate: func(c *Config) { c.Pipeline.RetentionDays = 0 }, wantErr: true},
		{name: "negative column", mutate: func(c *Config) { c.Pipeline.Columns.Item = -1 }, wantErr: true},
		{name: "empty namespace", mutate: func(c *Config) { c.Telemetry.Namespace = " " }, wantErr: true},
		{name: "unknown backend", mutate: func(c *Config) { c.Storage.Backend = "s3" }, wantErr: true},
		{name: "missing root", mutate: func(c *Config) { c.Storage.Root = "" }, wantErr: true},
		{name: "memory without root", mutate: func(c *Config) { c.Storage.Backend = "memory"; c.Storage.Root = "" }},
		{name: "unknown metric exporter", mutate: func(c *Config) { c.Telemetry.MetricExporter = "statsd" }, wantErr: true},
		{name: "unknown trace exporter", mutate: func(c *Config) { c.Telemetry.TraceExporter = "jaeger" }, wantErr: true},
		{name: "empty schedule", mutate: func(c *Config) { c.Schedule.Evaluate = "" }, wantErr: true},
		{name: "disabled empty schedule", mutate: func(c *Config) { c.Schedule.Enabled = false; c.Schedule.Evaluate = "" }},
		{name: "empty feed key", mutate: func(c *Config) { c.Pipeline.FeedKey = "" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateNormalisesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)
}

func TestConfig_ColumnLayout(t *testing.T) {
	assert.Equal(t, dataprocessing.DefaultColumnLayout(), Default().ColumnLayout())
}
