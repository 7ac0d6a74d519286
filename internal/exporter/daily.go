package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"forecastpipe/internal/series"
	"forecastpipe/internal/storage"
	"forecastpipe/pkg/contracts/domain"
)

// DefaultRetentionDays is how many days back from the feed's end date the
// per-day files are rewritten on each run.
const DefaultRetentionDays = 5

// DailyExporter handles per-day artifact generation
type DailyExporter struct {
	store     storage.ObjectStore
	csvWriter *CSVWriter
	layout    Layout
	retention int
	logger    *slog.Logger
}

// NewDailyExporter creates a new daily exporter. A retention below one day
// falls back to DefaultRetentionDays.
func NewDailyExporter(store storage.ObjectStore, layout Layout, retentionDays int, logger *slog.Logger) *DailyExporter {
	if logger == nil {
		logger = slog.Default()
	}
	if retentionDays < 1 {
		retentionDays = DefaultRetentionDays
	}
	logger = logger.With(slog.String("component", "daily_exporter"))
	return &DailyExporter{
		store:     store,
		csvWriter: NewCSVWriter(store, logger),
		layout:    layout,
		retention: retentionDays,
		logger:    logger,
	}
}

// InRetention reports whether day lies within the retention window of end.
// Older days were persisted by earlier runs.
func (d *DailyExporter) InRetention(day, end time.Time) bool {
	diff := series.Truncate(end).Sub(series.Truncate(day)) / (24 * time.Hour)
	if diff < 0 {
		diff = -diff
	}
	return int(diff) <= d.retention
}

// ExportDays writes target_{date}.csv and related_{date}.csv for every set
// inside the retention window and returns the number of days written.
func (d *DailyExporter) ExportDays(ctx context.Context, days []domain.DailyRowSet, end time.Time) (int, error) {
	written := 0
	for _, set := range days {
		if len(set) == 0 {
			continue
		}
		date := set[0].Date
		day, err := series.ParseDate(date)
		if err != nil {
			return written, fmt.Errorf("invalid row set date %q: %w", date, err)
		}
		if !d.InRetention(day, end) {
			continue
		}

		if err := ctx.Err(); err != nil {
			return written, err
		}
		if err := d.csvWriter.WriteSeries(ctx, d.layout.DailyKey(KindTarget, date), set.TargetRows()); err != nil {
			return written, fmt.Errorf("failed to write daily target for %s: %w", date, err)
		}
		if err := d.csvWriter.WriteSeries(ctx, d.layout.DailyKey(KindRelated, date), set.RelatedRows()); err != nil {
			return written, fmt.Errorf("failed to write daily related for %s: %w", date, err)
		}
		written++
	}

	d.logger.InfoContext(ctx, "Daily files exported",
		slog.Int("days_written", written),
		slog.Int("days_total", len(days)),
		slog.Int("retention_days", d.retention),
		slog.String("end_date", series.FormatDate(end)))
	return written, nil
}

// ArchiveFeed keeps a verbatim copy of the raw feed under the run date.
func (d *DailyExporter) ArchiveFeed(ctx context.Context, data []byte, runDate time.Time) (string, error) {
	key := d.layout.RawArchiveKey(series.FormatDate(runDate))
	if err := d.store.Put(ctx, key, data); err != nil {
		return "", fmt.Errorf("failed to archive raw feed: %w", err)
	}
	d.logger.InfoContext(ctx, "Raw feed archived",
		slog.String("key", key),
		slog.Int("size_bytes", len(data)))
	return key, nil
}
