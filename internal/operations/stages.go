package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"forecastpipe/internal/dataprocessing"
	"forecastpipe/internal/evaluation"
	"forecastpipe/internal/exporter"
	"forecastpipe/internal/infrastructure"
	"forecastpipe/internal/storage"
	"forecastpipe/pkg/contracts/domain"
)

// TransformStep turns the raw snapshot feed into per-day artifacts and the
// dataset-group history.
type TransformStep struct {
	BaseStep
	store       storage.ObjectStore
	layout      exporter.Layout
	feedKey     string
	transformer *dataprocessing.Transformer
	assembler   *dataprocessing.Assembler
	daily       *exporter.DailyExporter
	history     *exporter.HistoryExporter
	metrics     *infrastructure.PipelineMetrics
	logger      *slog.Logger
	now         func() time.Time
}

// TransformOptions configures a TransformStep
type TransformOptions struct {
	FeedKey       string
	Layout        exporter.Layout
	Columns       dataprocessing.ColumnLayout
	RetentionDays int
	Metrics       *infrastructure.PipelineMetrics
}

// NewTransformStep creates the transform step
func NewTransformStep(store storage.ObjectStore, opts TransformOptions, logger *slog.Logger) *TransformStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransformStep{
		BaseStep:    NewBaseStep(StepIDTransform, StepNameTransform),
		store:       store,
		layout:      opts.Layout,
		feedKey:     opts.FeedKey,
		transformer: dataprocessing.NewTransformer(opts.Columns, logger),
		assembler:   dataprocessing.NewAssembler(logger),
		daily:       exporter.NewDailyExporter(store, opts.Layout, opts.RetentionDays, logger),
		history:     exporter.NewHistoryExporter(store, opts.Layout, logger),
		metrics:     opts.Metrics,
		logger:      logger.With(slog.String("step", StepIDTransform)),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Validate checks the step has somewhere to read from
func (s *TransformStep) Validate(state *RunState) error {
	if s.store == nil {
		return fmt.Errorf("object store is not configured")
	}
	if s.feedKey == "" {
		return fmt.Errorf("feed key is empty")
	}
	if s.layout.TemplateKey == "" {
		return fmt.Errorf("model template key is empty")
	}
	return nil
}

// Execute reads the feed, archives it, writes the retained daily files and
// the full history with its run configuration.
func (s *TransformStep) Execute(ctx context.Context, state *RunState) error {
	state.SetResult(ResultKeyFeedKey, s.feedKey)

	raw, err := s.store.Get(ctx, s.feedKey)
	if err != nil {
		return fmt.Errorf("failed to read feed %s: %w", s.feedKey, err)
	}

	archiveKey, err := s.daily.ArchiveFeed(ctx, raw, s.now())
	if err != nil {
		return err
	}
	state.SetResult(ResultKeyRawArchiveKey, archiveKey)

	snap, err := s.transformer.ParseBytes(ctx, raw, dataprocessing.DetectFeedFormat(s.feedKey))
	if err != nil {
		return fmt.Errorf("failed to parse feed %s: %w", s.feedKey, err)
	}
	state.SetResult(ResultKeyItemCount, snap.Items.Len())

	days := snap.EmitAll()
	written, err := s.daily.ExportDays(ctx, days, snap.Range.End)
	if err != nil {
		return err
	}
	state.SetResult(ResultKeyDaysWritten, written)

	tmplData, err := s.store.Get(ctx, s.layout.TemplateKey)
	if err != nil {
		return fmt.Errorf("failed to read model template %s: %w", s.layout.TemplateKey, err)
	}
	tmpl, err := dataprocessing.LoadTemplate(tmplData)
	if err != nil {
		return err
	}

	art, err := s.assembler.Assemble(days, snap, tmpl)
	if err != nil {
		return err
	}
	if err := s.history.Export(ctx, art); err != nil {
		return err
	}

	state.SetResult(ResultKeyDatasetGroup, art.DatasetGroup)
	state.SetResult(ResultKeyTargetRows, len(art.TargetRows))
	state.SetResult(ResultKeyRelatedRows, len(art.RelatedRows))
	state.SetResult(ResultKeySyntheticRows, art.SyntheticRows)

	infrastructure.RecordRowsEmitted(ctx, s.metrics, string(exporter.KindTarget), len(art.TargetRows))
	infrastructure.RecordRowsEmitted(ctx, s.metrics, string(exporter.KindRelated), len(art.RelatedRows))

	s.logger.InfoContext(ctx, "Transform finished",
		slog.String("dataset_group", art.DatasetGroup),
		slog.Int("days_written", written),
		slog.Int("target_rows", len(art.TargetRows)),
		slog.Int("related_rows", len(art.RelatedRows)))
	return nil
}

// EvaluateStep scores finished forecast exports and archives the complete ones.
type EvaluateStep struct {
	BaseStep
	archiver *evaluation.Archiver
	metrics  *infrastructure.PipelineMetrics
	logger   *slog.Logger
}

// NewEvaluateStep creates the evaluate step around an archiver
func NewEvaluateStep(archiver *evaluation.Archiver, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *EvaluateStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &EvaluateStep{
		BaseStep: NewBaseStep(StepIDEvaluate, StepNameEvaluate),
		archiver: archiver,
		metrics:  metrics,
		logger:   logger.With(slog.String("step", StepIDEvaluate)),
	}
}

// Validate checks the archiver is wired
func (s *EvaluateStep) Validate(state *RunState) error {
	if s.archiver == nil {
		return fmt.Errorf("archiver is not configured")
	}
	return nil
}

// Execute runs one export scan. Individual export failures are reported in
// the outcomes and do not fail the step.
func (s *EvaluateStep) Execute(ctx context.Context, state *RunState) error {
	outcomes, err := s.archiver.Run(ctx)
	state.SetResult(ResultKeyExportOutcomes, outcomes)

	failed := 0
	for _, o := range outcomes {
		infrastructure.RecordExportOutcome(ctx, s.metrics, string(o.Status))
		if o.Status == domain.ExportStatusFailed {
			failed++
		}
	}
	state.SetResult(ResultKeyExportsFailed, failed)

	if err != nil {
		return fmt.Errorf("export scan aborted: %w", err)
	}
	if failed > 0 {
		s.logger.WarnContext(ctx, "Some forecast exports failed",
			slog.Int("failed", failed),
			slog.Int("exports", len(outcomes)))
	}
	return nil
}
