// Package exporter writes pipeline artifacts to the object store.
//
// This package contains three main components:
//
// CSVWriter: Encodes records as headerless CSV and puts them under a key.
//
// DailyExporter: Persists the per-day target and related files for the days
// inside the retention window, and archives the raw feed.
//
// HistoryExporter: Persists a dataset group's config.json, target.csv and
// related.csv.
//
// Key construction for every artifact lives in Layout.
//
// Example usage:
//
//	layout := exporter.DefaultLayout()
//	daily := exporter.NewDailyExporter(store, layout, 5, logger)
//	written, err := daily.ExportDays(ctx, snapshot.EmitAll(), snapshot.Range.End)
//
//	history := exporter.NewHistoryExporter(store, layout, logger)
//	err = history.Export(ctx, artifacts)
package exporter
