package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"forecastpipe/internal/config"
	"forecastpipe/internal/evaluation"
	"forecastpipe/internal/infrastructure"
	"forecastpipe/internal/operations"
	"forecastpipe/internal/scheduler"
	"forecastpipe/internal/storage"
	"forecastpipe/internal/telemetry"
	transporthttp "forecastpipe/internal/transport/http"
)

// Application holds the wired pipeline
type Application struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    storage.ObjectStore
	OTel     *infrastructure.OTelProviders
	Metrics  *infrastructure.PipelineMetrics
	Sink     telemetry.Sink
	Recorder *telemetry.SQLiteRecorder
	Manager  *operations.Manager
}

// New builds every component from cfg. Call Close when done.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	a := &Application{Config: cfg, Logger: logger}
	if err := a.initialize(); err != nil {
		a.Close(context.Background())
		return nil, err
	}
	return a, nil
}

func (a *Application) initialize() error {
	store, err := newStore(a.Config.Storage, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.Store = store

	a.OTel, err = infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(a.Config.Telemetry), a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	a.Metrics, err = infrastructure.CreatePipelineMetrics(a.OTel.Meter)
	if err != nil {
		return fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	if err := a.initializeSinks(); err != nil {
		return err
	}

	registry := operations.NewRegistry()
	transform := operations.NewTransformStep(a.Store, operations.TransformOptions{
		FeedKey:       a.Config.Pipeline.FeedKey,
		Layout:        a.Config.Pipeline.Layout,
		Columns:       a.Config.ColumnLayout(),
		RetentionDays: a.Config.Pipeline.RetentionDays,
		Metrics:       a.Metrics,
	}, a.Logger)
	archiver := evaluation.NewArchiver(a.Store, a.Config.Pipeline.Layout, a.Sink, a.Config.Telemetry.Namespace, a.Logger)
	evaluate := operations.NewEvaluateStep(archiver, a.Metrics, a.Logger)

	for _, step := range []operations.Step{transform, evaluate} {
		if err := registry.Register(step); err != nil {
			return fmt.Errorf("failed to register step %s: %w", step.ID(), err)
		}
	}

	a.Manager = operations.NewManager(registry, operations.ConfigFrom(a.Config.Pipeline),
		operations.NewRunTracer(a.Metrics), a.Logger)
	return nil
}

func newStore(cfg config.StorageConfig, logger *slog.Logger) (storage.ObjectStore, error) {
	var store storage.ObjectStore
	switch cfg.Backend {
	case "memory":
		store = storage.NewMemoryStore()
	case "filesystem", "":
		fs, err := storage.NewFileStore(cfg.Root, logger)
		if err != nil {
			return nil, err
		}
		store = fs
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
	return storage.NewRateLimitedStore(store, cfg.RateLimit.RPS, cfg.RateLimit.Burst), nil
}

// initializeSinks fans observations out to the gauge (when metrics are
// exported) and the SQLite recorder (when a path is set)
func (a *Application) initializeSinks() error {
	var sinks []telemetry.Sink
	if a.Config.Telemetry.MetricExporter == "prometheus" {
		gauge, err := telemetry.NewGaugeSink(a.OTel.Meter)
		if err != nil {
			return err
		}
		sinks = append(sinks, gauge)
	}
	if path := a.Config.Telemetry.SQLitePath; path != "" {
		rec, err := telemetry.NewSQLiteRecorder(path, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to open metric recorder: %w", err)
		}
		a.Recorder = rec
		sinks = append(sinks, rec)
	}
	a.Sink = telemetry.Combine(sinks...)
	return nil
}

// RunOnce executes stepIDs (all steps when empty) once
func (a *Application) RunOnce(ctx context.Context, stepIDs ...string) (*operations.RunResponse, error) {
	return a.Manager.Execute(ctx, operations.RunRequest{
		Steps:   stepIDs,
		Trigger: operations.TriggerManual,
	})
}

// Serve runs the scheduler and the status server until ctx is cancelled or
// either of them fails.
func (a *Application) Serve(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	sched := scheduler.New(gctx, a.Manager, a.Logger)
	if a.Config.Schedule.Enabled {
		if err := sched.RegisterAll(a.Config.Schedule); err != nil {
			return err
		}
	}

	router := transporthttp.NewRouter(a.routerConfig(gctx), a.Logger)
	server := transporthttp.NewServer(a.Config.Server, router, a.Logger)

	a.Logger.InfoContext(ctx, "Starting pipeline service",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("address", a.Config.Server.Address),
		slog.Bool("schedule_enabled", a.Config.Schedule.Enabled))

	g.Go(func() error { return sched.Run(gctx) })
	g.Go(func() error { return server.Serve(gctx) })
	if a.Config.Schedule.RunOnStart {
		g.Go(func() error {
			sched.RunNow(operations.TriggerStartup, operations.StepIDTransform, operations.StepIDEvaluate)
			return nil
		})
	}

	err := g.Wait()
	a.Logger.InfoContext(ctx, "Pipeline service stopped")
	return err
}

func (a *Application) routerConfig(ctx context.Context) transporthttp.RouterConfig {
	cfg := transporthttp.RouterConfig{
		Runs:        a.Manager,
		BaseContext: ctx,
		Metrics:     a.OTel.PrometheusHTTP,
		Checks: []transporthttp.ReadinessCheck{{
			Name: "storage",
			Check: func(ctx context.Context) error {
				_, err := a.Store.List(ctx, a.Config.Pipeline.Layout.DailyPrefix)
				return err
			},
		}},
		IncludeStack: a.Config.Logging.Development,
	}
	if a.Recorder != nil {
		cfg.Observations = a.Recorder
		cfg.Checks = append(cfg.Checks, transporthttp.ReadinessCheck{Name: "sqlite", Check: a.Recorder.Ping})
	}
	return cfg
}

// Close releases the recorder and flushes telemetry
func (a *Application) Close(ctx context.Context) error {
	var errs []error
	if a.Recorder != nil {
		if err := a.Recorder.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.OTel != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
		defer cancel()
		if err := a.OTel.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
