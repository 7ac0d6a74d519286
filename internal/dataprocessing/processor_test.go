package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecastpipe/internal/series"
	"forecastpipe/pkg/contracts/domain"
)

func TestEmitDayBackfillsWithZero(t *testing.T) {
	snap := parse(t, sampleFeed())
	day, err := series.ParseDate("2020-03-02")
	require.NoError(t, err)

	got := snap.EmitDay(day)
	want := domain.DailyRowSet{
		{Date: "2020-03-02", Item: "NY", Target: "0", Related: "0"},
		{Date: "2020-03-02", Item: "WA", Target: "0", Related: "60"},
		{Date: "2020-03-02", Item: "CA", Target: "0", Related: "0"},
	}
	assert.Equal(t, want, got)
}

func TestEmitAllReproducesFeed(t *testing.T) {
	snap := parse(t, sampleFeed())
	observed := map[[2]string][2]string{
		{"2020-03-03", "NY"}: {"30", "300"},
		{"2020-03-01", "NY"}: {"10", "100"},
		{"2020-03-01", "WA"}: {"5", "50"},
		{"2020-03-02", "WA"}: {"0", "60"},
		{"2020-03-03", "CA"}: {"7", "70"},
	}

	sets := snap.EmitAll()
	require.Len(t, sets, 3)
	for _, set := range sets {
		require.Len(t, set, snap.Items.Len())
		for i, row := range set {
			assert.Equal(t, snap.Items.Items()[i], row.Item, "rows follow universe order")
			if vals, ok := observed[[2]string{row.Date, row.Item}]; ok {
				assert.Equal(t, vals[0], row.Target)
				assert.Equal(t, vals[1], row.Related)
			} else {
				assert.Equal(t, series.ZeroValue, row.Target)
				assert.Equal(t, series.ZeroValue, row.Related)
			}
		}
	}
	assert.Equal(t, "2020-03-01", sets[0][0].Date)
	assert.Equal(t, "2020-03-03", sets[2][0].Date)
}

func TestReparseIsIdempotent(t *testing.T) {
	first := parse(t, sampleFeed()).EmitAll()
	second := parse(t, sampleFeed()).EmitAll()
	assert.Equal(t, first, second)
}
