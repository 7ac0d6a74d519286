package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"forecastpipe/internal/dataprocessing"
	"forecastpipe/internal/storage"
	"forecastpipe/pkg/contracts/domain"
)

// HistoryExporter persists the artifacts of one dataset group.
type HistoryExporter struct {
	store     storage.ObjectStore
	csvWriter *CSVWriter
	layout    Layout
	logger    *slog.Logger
}

// NewHistoryExporter creates a history exporter.
func NewHistoryExporter(store storage.ObjectStore, layout Layout, logger *slog.Logger) *HistoryExporter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "history_exporter"))
	return &HistoryExporter{
		store:     store,
		csvWriter: NewCSVWriter(store, logger),
		layout:    layout,
		logger:    logger,
	}
}

// Export writes config.json, target.csv and related.csv, in that order.
// All three are overwritten when the group already exists.
func (h *HistoryExporter) Export(ctx context.Context, art *dataprocessing.HistoryArtifacts) error {
	if art == nil {
		return fmt.Errorf("no history artifacts to export")
	}
	group := art.DatasetGroup

	cfg, err := json.Marshal(art.Config)
	if err != nil {
		return fmt.Errorf("failed to encode run config: %w", err)
	}
	if err := h.store.Put(ctx, h.layout.DatasetGroupKey(group, ConfigFile), cfg); err != nil {
		return fmt.Errorf("failed to write run config: %w", err)
	}
	if err := h.csvWriter.WriteSeries(ctx, h.layout.DatasetGroupKey(group, TargetFile), art.TargetRows); err != nil {
		return fmt.Errorf("failed to write target history: %w", err)
	}
	if err := h.csvWriter.WriteSeries(ctx, h.layout.DatasetGroupKey(group, RelatedFile), art.RelatedRows); err != nil {
		return fmt.Errorf("failed to write related history: %w", err)
	}

	h.logger.InfoContext(ctx, "Dataset group exported",
		slog.String("dataset_group", group),
		slog.Int("target_rows", len(art.TargetRows)),
		slog.Int("related_rows", len(art.RelatedRows)),
		slog.String("forecast_starttime", art.Config.ForecastStartTime),
		slog.String("forecast_endtime", art.Config.ForecastEndTime))
	return nil
}

// LoadRunConfig reads the config.json of a dataset group.
func (h *HistoryExporter) LoadRunConfig(ctx context.Context, group string) (domain.RunConfig, error) {
	return LoadRunConfig(ctx, h.store, h.layout, group)
}

// LoadRunConfig reads the config.json of a dataset group from store.
func LoadRunConfig(ctx context.Context, store storage.ObjectStore, layout Layout, group string) (domain.RunConfig, error) {
	var cfg domain.RunConfig
	data, err := store.Get(ctx, layout.DatasetGroupKey(group, ConfigFile))
	if err != nil {
		return cfg, fmt.Errorf("failed to read run config for %s: %w", group, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode run config for %s: %w", group, err)
	}
	return cfg, nil
}
