package evaluation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"forecastpipe/internal/exporter"
	"forecastpipe/internal/forecast"
	"forecastpipe/internal/series"
	"forecastpipe/internal/storage"
	"forecastpipe/internal/telemetry"
	"forecastpipe/pkg/contracts/domain"
)

// Archiver walks finished forecast exports, publishes their accuracy and
// archives the ones whose whole horizon has realized data.
type Archiver struct {
	store     storage.ObjectStore
	layout    exporter.Layout
	parser    *forecast.Parser
	evaluator *Evaluator
	sink      telemetry.Sink
	namespace string
	logger    *slog.Logger
	now       func() time.Time
}

// NewArchiver creates an archiver publishing to sink under namespace.
func NewArchiver(store storage.ObjectStore, layout exporter.Layout, sink telemetry.Sink, namespace string, logger *slog.Logger) *Archiver {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = telemetry.NoopSink{}
	}
	return &Archiver{
		store:     store,
		layout:    layout,
		parser:    forecast.NewParser(logger),
		evaluator: NewEvaluator(logger),
		sink:      sink,
		namespace: namespace,
		logger:    logger.With(slog.String("component", "archiver")),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run processes every _SUCCESS marker under the exports prefix. A failing
// export is reported in its outcome and does not stop the others; the
// returned error is only set when the store cannot be listed or ctx ends.
func (a *Archiver) Run(ctx context.Context) ([]domain.ExportOutcome, error) {
	dailyKeys, err := a.store.List(ctx, a.layout.DailyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily data: %w", err)
	}
	available := make(map[string]struct{}, len(dailyKeys))
	for _, k := range dailyKeys {
		available[k] = struct{}{}
	}

	exportKeys, err := a.store.List(ctx, a.layout.ExportsPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}

	var outcomes []domain.ExportOutcome
	counts := make(map[domain.ExportStatus]int)
	for _, key := range exportKeys {
		if path.Base(key) != exporter.SuccessMarker {
			continue
		}
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		outcome := a.processExport(ctx, key, available)
		counts[outcome.Status]++
		outcomes = append(outcomes, outcome)
	}

	a.logger.InfoContext(ctx, "Export scan complete",
		slog.Int("exports", len(outcomes)),
		slog.Int("archived", counts[domain.ExportStatusArchived]),
		slog.Int("evaluated", counts[domain.ExportStatusEvaluated]),
		slog.Int("pending", counts[domain.ExportStatusPending]),
		slog.Int("skipped", counts[domain.ExportStatusSkipped]),
		slog.Int("failed", counts[domain.ExportStatusFailed]))
	return outcomes, nil
}

func (a *Archiver) processExport(ctx context.Context, key string, available map[string]struct{}) domain.ExportOutcome {
	outcome := domain.ExportOutcome{ExportKey: key, ProcessedAt: a.now()}

	group, _, ok := a.layout.ParseExportKey(key)
	if !ok {
		outcome.Status = domain.ExportStatusSkipped
		outcome.Message = "marker is not inside an export folder"
		return outcome
	}
	outcome.DatasetGroup = group

	if err := a.evaluateExport(ctx, key, group, available, &outcome); err != nil {
		a.logger.ErrorContext(ctx, "Failed to evaluate forecast export, continuing with next export",
			slog.String("export_key", key),
			slog.String("dataset_group", group),
			slog.String("error", err.Error()))
		outcome.Status = domain.ExportStatusFailed
		outcome.Error = err.Error()
	}
	return outcome
}

func (a *Archiver) evaluateExport(ctx context.Context, key, group string, available map[string]struct{}, outcome *domain.ExportOutcome) error {
	cfg, err := exporter.LoadRunConfig(ctx, a.store, a.layout, group)
	if err != nil {
		return err
	}
	start, err := series.ParseDate(cfg.ForecastStartTime)
	if err != nil {
		return fmt.Errorf("invalid forecast_starttime %q: %w", cfg.ForecastStartTime, err)
	}
	end, err := series.ParseDate(cfg.ForecastEndTime)
	if err != nil {
		return fmt.Errorf("invalid forecast_endtime %q: %w", cfg.ForecastEndTime, err)
	}
	ready := a.historyAvailable(available, series.NewDateRange(start, end))

	folder := path.Dir(key)
	set, err := a.loadForecast(ctx, folder)
	if err != nil {
		return err
	}

	realized, found, err := a.loadRealized(ctx, start)
	if err != nil {
		return err
	}
	if found {
		observations, err := a.evaluator.Evaluate(ctx, set, realized, start, cfg.ModelName, set.Labels)
		if err != nil {
			return err
		}
		for _, obs := range observations {
			if err := a.sink.PutMetric(ctx, a.namespace, obs); err != nil {
				return fmt.Errorf("failed to publish %s metric: %w", domain.MetricName, err)
			}
		}
		outcome.Observations = len(observations)
	} else {
		outcome.Message = "no realized data for " + series.FormatDate(start)
		a.logger.InfoContext(ctx, "No realized data yet, metrics skipped",
			slog.String("dataset_group", group),
			slog.String("date", series.FormatDate(start)))
	}

	if !ready {
		if outcome.Observations > 0 {
			outcome.Status = domain.ExportStatusEvaluated
		} else {
			outcome.Status = domain.ExportStatusPending
		}
		a.logger.InfoContext(ctx, "Export not ready to be archived yet",
			slog.String("dataset_group", group))
		return nil
	}

	archivedKey := path.Join(folder, exporter.ArchivedMarker)
	if err := a.store.Put(ctx, archivedKey, nil); err != nil {
		return fmt.Errorf("failed to write archive marker: %w", err)
	}
	if err := a.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to remove success marker: %w", err)
	}
	outcome.Status = domain.ExportStatusArchived
	a.logger.InfoContext(ctx, "Export archived",
		slog.String("dataset_group", group),
		slog.String("export_key", archivedKey))
	return nil
}

// historyAvailable reports whether every day of r has a daily target file.
func (a *Archiver) historyAvailable(available map[string]struct{}, r series.DateRange) bool {
	for _, day := range r.Days() {
		if _, ok := available[a.layout.DailyKey(exporter.KindTarget, series.FormatDate(day))]; !ok {
			return false
		}
	}
	return true
}

// loadForecast parses every CSV object under folder into one set.
func (a *Archiver) loadForecast(ctx context.Context, folder string) (*forecast.QuantileSet, error) {
	keys, err := a.store.List(ctx, folder+"/")
	if err != nil {
		return nil, fmt.Errorf("failed to list export folder: %w", err)
	}

	set := forecast.NewQuantileSet()
	files := 0
	for _, k := range keys {
		if !strings.HasSuffix(k, ".csv") {
			continue
		}
		data, err := a.store.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		if _, err := a.parser.Parse(ctx, set, bytes.NewReader(data), k); err != nil {
			return nil, err
		}
		files++
	}
	if files == 0 {
		return nil, &forecast.EmptyExportError{Key: folder}
	}
	return set, nil
}

// loadRealized reads the daily target file of day. found is false when the
// file does not exist yet.
func (a *Archiver) loadRealized(ctx context.Context, day time.Time) (Realized, bool, error) {
	key := a.layout.DailyKey(exporter.KindTarget, series.FormatDate(day))
	data, err := a.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return Realized{}, false, nil
	}
	if err != nil {
		return Realized{}, false, err
	}
	realized, err := ParseRealized(bytes.NewReader(data))
	if err != nil {
		return Realized{}, false, fmt.Errorf("%s: %w", key, err)
	}
	return realized, true, nil
}
