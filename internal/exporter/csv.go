package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"

	"forecastpipe/internal/storage"
	"forecastpipe/pkg/contracts/domain"
)

// CSVWriter provides CSV export functionality on top of an object store.
type CSVWriter struct {
	store  storage.ObjectStore
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(store storage.ObjectStore, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{store: store, logger: logger}
}

// EncodeCSV renders records without a header.
func EncodeCSV(records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCSV encodes records and stores them under key, replacing any
// previous object.
func (w *CSVWriter) WriteCSV(ctx context.Context, key string, records [][]string) error {
	data, err := EncodeCSV(records)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	w.logger.InfoContext(ctx, "Writing CSV object",
		slog.String("key", key),
		slog.Int("record_count", len(records)),
		slog.Int("size_bytes", len(data)))

	if err := w.store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// WriteSeries stores a target or related series under key.
func (w *CSVWriter) WriteSeries(ctx context.Context, key string, rows []domain.SeriesRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.Record())
	}
	return w.WriteCSV(ctx, key, records)
}
