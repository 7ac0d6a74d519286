package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecastpipe/internal/config"
	"forecastpipe/internal/shared/testutil"
	"forecastpipe/pkg/contracts"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		mode    string
		wantErr bool
	}{
		{"default is serve", nil, modeServe, false},
		{"transform", []string{"-mode", "transform"}, modeTransform, false},
		{"evaluate with config", []string{"-mode=evaluate", "-config", "c.yaml"}, modeEvaluate, false},
		{"unknown mode", []string{"-mode", "scrape"}, "", true},
		{"unknown flag", []string{"-full"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseFlags(tt.args, io.Discard)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.mode, opts.mode)
		})
	}
}

func TestRunVersion(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-version"}, &out))
	assert.Contains(t, out.String(), contracts.GetVersionString())
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func TestRunTransformAndEvaluate(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "objects")
	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, "storage:\n  backend: filesystem\n  root: "+root+"\n"+
		"telemetry:\n  metric_exporter: none\n"+
		"schedule:\n  enabled: false\n")

	writeFile(t, filepath.Join(root, config.DefaultFeedKey), string(testutil.Feed(
		testutil.FeedRow("20200301", "NY", "10", "100"),
		testutil.FeedRow("20200302", "WA", "5", "50"),
	)))
	writeFile(t, filepath.Join(root, "forecast-model-config.json"), testutil.ModelTemplate("covid-model", 3))

	ctx := context.Background()
	require.NoError(t, run(ctx, []string{"-mode", "transform", "-config", cfgPath}, io.Discard))

	assert.FileExists(t, filepath.Join(root, "covid-19-daily", "target_2020-03-02.csv"))
	assert.FileExists(t, filepath.Join(root, "DatasetGroups", "covidmodel_20200301_20200302", "config.json"))

	require.NoError(t, run(ctx, []string{"-mode", "evaluate", "-config", cfgPath}, io.Discard))
}

func TestRunMissingFeedFails(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, "storage:\n  root: "+filepath.Join(dir, "objects")+"\n"+
		"telemetry:\n  metric_exporter: none\n")

	err := run(context.Background(), []string{"-mode", "transform", "-config", cfgPath}, io.Discard)
	assert.Error(t, err)
}
