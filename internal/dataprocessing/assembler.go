package dataprocessing

import (
	"log/slog"
	"sort"

	"forecastpipe/internal/series"
	"forecastpipe/pkg/contracts/domain"
)

// HistoryArtifacts is everything a dataset group needs: the full target and
// related series and the run configuration.
type HistoryArtifacts struct {
	DatasetGroup  string
	TargetRows    []domain.SeriesRow
	RelatedRows   []domain.SeriesRow
	SyntheticRows int
	Config        domain.RunConfig
}

// Assembler builds HistoryArtifacts from per-day row sets.
type Assembler struct {
	logger *slog.Logger
}

// NewAssembler creates an assembler.
func NewAssembler(logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{logger: logger.With(slog.String("component", "assembler"))}
}

// Assemble concatenates days chronologically into the history series, then
// extends only the related series across the forecast horizon by holding
// each item's last observed related value. Targets are never extended: that
// window is what the service has to predict.
func (a *Assembler) Assemble(days []domain.DailyRowSet, snap *Snapshot, tmpl domain.RunConfig) (*HistoryArtifacts, error) {
	horizon := tmpl.Predictor.ForecastHorizon
	if horizon <= 0 {
		return nil, &InvalidHorizonError{Horizon: horizon}
	}
	if snap == nil || snap.Range.IsEmpty() {
		return nil, &NoDataError{Source: "history"}
	}

	group, err := DatasetGroupName(tmpl.ModelName, snap.Range)
	if err != nil {
		return nil, err
	}

	ordered := make([]domain.DailyRowSet, 0, len(days))
	for _, set := range days {
		if len(set) > 0 {
			ordered = append(ordered, set)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i][0].Date < ordered[j][0].Date
	})

	out := &HistoryArtifacts{DatasetGroup: group}
	for _, set := range ordered {
		out.TargetRows = append(out.TargetRows, set.TargetRows()...)
		out.RelatedRows = append(out.RelatedRows, set.RelatedRows()...)
	}

	end := series.FormatDate(snap.Range.End)
	forecastStart := snap.Range.End.AddDate(0, 0, 1)
	forecastEnd := snap.Range.End.AddDate(0, 0, horizon)
	items := snap.Items.Items()
	for _, day := range series.NewDateRange(forecastStart, forecastEnd).Days() {
		date := series.FormatDate(day)
		for _, item := range items {
			out.RelatedRows = append(out.RelatedRows, domain.SeriesRow{
				Item:  item,
				Date:  date,
				Value: snap.Store.Lookup(end, item, series.FieldRelated),
			})
			out.SyntheticRows++
		}
	}

	cfg := tmpl.Clone()
	cfg.DataStartTime = series.FormatDate(snap.Range.Start)
	cfg.DataEndTime = end
	cfg.ForecastStartTime = series.FormatDate(forecastStart)
	cfg.ForecastEndTime = series.FormatDate(forecastEnd)
	out.Config = cfg

	a.logger.Info("history assembled",
		slog.String("dataset_group", group),
		slog.Int("target_rows", len(out.TargetRows)),
		slog.Int("related_rows", len(out.RelatedRows)),
		slog.Int("synthetic_rows", out.SyntheticRows),
		slog.String("forecast_start", cfg.ForecastStartTime),
		slog.String("forecast_end", cfg.ForecastEndTime))

	return out, nil
}
