package exporter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecastpipe/internal/storage"
	"forecastpipe/pkg/contracts/domain"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func rowSet(date string, rows ...[3]string) domain.DailyRowSet {
	set := make(domain.DailyRowSet, 0, len(rows))
	for _, r := range rows {
		set = append(set, domain.DailyRow{Date: date, Item: r[0], Target: r[1], Related: r[2]})
	}
	return set
}

func TestDailyExporter_InRetention(t *testing.T) {
	d := NewDailyExporter(storage.NewMemoryStore(), DefaultLayout(), 5, quietLogger())
	end := day("2020-04-10")

	tests := []struct {
		day  string
		want bool
	}{
		{"2020-04-10", true},
		{"2020-04-05", true},
		{"2020-04-04", false},
		{"2020-03-01", false},
		{"2020-04-15", true},
		{"2020-04-16", false},
	}
	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			assert.Equal(t, tt.want, d.InRetention(day(tt.day), end))
		})
	}
}

func TestNewDailyExporter_DefaultRetention(t *testing.T) {
	d := NewDailyExporter(storage.NewMemoryStore(), DefaultLayout(), 0, nil)
	assert.Equal(t, DefaultRetentionDays, d.retention)
}

func TestDailyExporter_ExportDays(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	d := NewDailyExporter(store, DefaultLayout(), 1, quietLogger())

	days := []domain.DailyRowSet{
		rowSet("2020-04-01", [3]string{"NY", "1", "10"}, [3]string{"CA", "2", "20"}),
		rowSet("2020-04-02", [3]string{"NY", "3", "30"}, [3]string{"CA", "0", "0"}),
		rowSet("2020-04-03", [3]string{"NY", "5", "50"}, [3]string{"CA", "6", "60"}),
		{},
	}

	written, err := d.ExportDays(ctx, days, day("2020-04-03"))
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	keys, err := store.List(ctx, "covid-19-daily/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"covid-19-daily/related_2020-04-02.csv",
		"covid-19-daily/related_2020-04-03.csv",
		"covid-19-daily/target_2020-04-02.csv",
		"covid-19-daily/target_2020-04-03.csv",
	}, keys)

	target, err := store.Get(ctx, "covid-19-daily/target_2020-04-02.csv")
	require.NoError(t, err)
	assert.Equal(t, "NY,2020-04-02,3\nCA,2020-04-02,0\n", string(target))

	related, err := store.Get(ctx, "covid-19-daily/related_2020-04-03.csv")
	require.NoError(t, err)
	assert.Equal(t, "NY,2020-04-03,50\nCA,2020-04-03,60\n", string(related))
}

func TestDailyExporter_ExportDaysCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDailyExporter(storage.NewMemoryStore(), DefaultLayout(), 5, quietLogger())
	_, err := d.ExportDays(ctx, []domain.DailyRowSet{rowSet("2020-04-01", [3]string{"NY", "1", "1"})}, day("2020-04-01"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDailyExporter_ArchiveFeed(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	d := NewDailyExporter(store, DefaultLayout(), 5, quietLogger())

	key, err := d.ArchiveFeed(ctx, []byte("date,state\n"), day("2020-04-06"))
	require.NoError(t, err)
	assert.Equal(t, "covid-19-raw/states_daily_raw2020-04-06.csv", key)

	data, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "date,state\n", string(data))
}
