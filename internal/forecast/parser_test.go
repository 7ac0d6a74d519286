package forecast

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, set *QuantileSet, body string) (int, error) {
	t.Helper()
	p := NewParser(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return p.Parse(context.Background(), set, strings.NewReader(body), "ForecastExports/g_Forecast/part-0.csv")
}

func TestParser_Parse(t *testing.T) {
	set := NewQuantileSet()
	body := "item_id,date,p10,p50,p90\n" +
		"ny,2020-04-06T00:00:00Z,90,100,110\n" +
		"ca,2020-04-06T00:00:00Z,45,50,55\n" +
		"ny,2020-04-07T00:00:00Z,95,105,115\n"

	rows, err := parse(t, set, body)
	require.NoError(t, err)
	assert.Equal(t, 3, rows)
	assert.Equal(t, []string{"p10", "p50", "p90"}, set.Labels)
	assert.Equal(t, []string{"ny", "ca"}, set.Items.Items())

	v, ok, err := set.Value("2020-04-06", "NY", "p50")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 100.0, v)

	v, ok, err = set.Value("2020-04-07", "ny", "p90")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 115.0, v)

	_, ok, err = set.Value("2020-04-07", "ca", "p50")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParser_LaterRowWins(t *testing.T) {
	set := NewQuantileSet()
	body := "item_id,date,0.5\n" +
		"ny,2020-04-06,100\n" +
		"ny,2020-04-06,120\n"

	_, err := parse(t, set, body)
	require.NoError(t, err)

	v, _, err := set.Value("2020-04-06", "ny", "0.5")
	require.NoError(t, err)
	assert.Equal(t, 120.0, v)
}

func TestParser_EmptyExport(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "header only", body: "item_id,date,p50\n"},
		{name: "no content", body: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, NewQuantileSet(), tt.body)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrEmptyExport)

			var empty *EmptyExportError
			require.ErrorAs(t, err, &empty)
			assert.Contains(t, empty.Key, "part-0.csv")
		})
	}
}

func TestParser_LaterHeaderColumnsMappedByLabel(t *testing.T) {
	set := NewQuantileSet()
	_, err := parse(t, set, "item_id,date,p10,p50
ny,2020-04-06,1,2
")
	require.NoError(t, err)

	_, err = parse(t, set, "item_id,date,p50,p10
ca,2020-04-06,40,30
")
	require.NoError(t, err)

	assert.Equal(t, []string{"p10", "p50"}, set.Labels)
	v, _, err := set.Value("2020-04-06", "ca", "p50")
	require.NoError(t, err)
	assert.Equal(t, 40.0, v)
	v, _, err = set.Value("2020-04-06", "ca", "p10")
	require.NoError(t, err)
	assert.Equal(t, 30.0, v)
}

func TestParser_LaterHeaderWithOtherLabels(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "renamed", body: "item_id,date,other,labels
ca,2020-04-06,3,4
"},
		{name: "extra label", body: "item_id,date,p10,p50,p90
ca,2020-04-06,3,4,5
"},
		{name: "missing label", body: "item_id,date,p50
ca,2020-04-06,4
"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := NewQuantileSet()
			_, err := parse(t, set, "item_id,date,p10,p50
ny,2020-04-06,1,2
")
			require.NoError(t, err)

			_, err = parse(t, set, tt.body)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "do not match")
			assert.False(t, set.Store.Has("2020-04-06", "ca"))
		})
	}
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "data before header", body: "ny,2020-04-06,1\n"},
		{name: "short row", body: "item_id,date,p10,p50\nny,2020-04-06,1\n"},
		{name: "bad timestamp", body: "item_id,date,p50\nny,04/06/2020,1\n"},
		{name: "header without quantiles", body: "item_id,date\nny,2020-04-06\n"},
		{name: "truncated header", body: "item_id\nny,2020-04-06,1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, NewQuantileSet(), tt.body)
			require.Error(t, err)
			assert.NotErrorIs(t, err, ErrEmptyExport)
		})
	}
}

func TestQuantileSet_ValueUnparsable(t *testing.T) {
	set := NewQuantileSet()
	_, err := parse(t, set, "item_id,date,p50\nny,2020-04-06,abc\n")
	require.NoError(t, err)

	_, ok, err := set.Value("2020-04-06", "ny", "p50")
	assert.True(t, ok)
	assert.Error(t, err)
}
