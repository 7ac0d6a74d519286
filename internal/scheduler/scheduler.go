// Package scheduler triggers pipeline runs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"forecastpipe/internal/config"
	"forecastpipe/internal/infrastructure"
	"forecastpipe/internal/operations"
)

// Runner executes pipeline runs. *operations.Manager satisfies it.
type Runner interface {
	Execute(ctx context.Context, req operations.RunRequest) (*operations.RunResponse, error)
}

// Scheduler manages the cron entries for the transform and evaluate steps.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	ctx    context.Context
	logger *slog.Logger
}

// New creates a scheduler. Scheduled runs inherit ctx, so cancelling it
// cancels in-flight runs.
func New(ctx context.Context, runner Runner, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		runner: runner,
		ctx:    ctx,
		logger: infrastructure.WithComponent(logger, "scheduler"),
	}
}

// RegisterAll adds the transform and evaluate entries from cfg.
func (s *Scheduler) RegisterAll(cfg config.ScheduleConfig) error {
	if err := s.Register(cfg.Transform, operations.StepIDTransform); err != nil {
		return err
	}
	if err := s.Register(cfg.Evaluate, operations.StepIDEvaluate); err != nil {
		return err
	}
	return nil
}

// Register runs stepID on the seconds-enabled cron expression spec.
func (s *Scheduler) Register(spec, stepID string) error {
	if _, err := s.cron.AddFunc(spec, func() { s.run(stepID, operations.TriggerSchedule) }); err != nil {
		return fmt.Errorf("register %s schedule %q: %w", stepID, spec, err)
	}
	s.logger.Info("Schedule registered",
		slog.String("step", stepID),
		slog.String("cron", spec))
	return nil
}

// Entries returns the number of registered schedules.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started", slog.Int("entries", s.Entries()))
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// Run starts the scheduler and blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	s.Start()
	<-ctx.Done()
	s.Stop()
	return nil
}

// RunNow executes stepIDs immediately in order, e.g. for run-on-start.
func (s *Scheduler) RunNow(trigger string, stepIDs ...string) {
	for _, id := range stepIDs {
		s.run(id, trigger)
	}
}

func (s *Scheduler) run(stepID, trigger string) {
	ctx := infrastructure.ContextWithTraceID(s.ctx)
	resp, err := s.runner.Execute(ctx, operations.RunRequest{
		Steps:   []string{stepID},
		Trigger: trigger,
	})
	if err != nil {
		infrastructure.WithError(s.logger, err).ErrorContext(ctx, "Scheduled run failed",
			slog.String("step", stepID),
			slog.String("trigger", trigger))
		return
	}
	s.logger.InfoContext(ctx, "Scheduled run finished",
		slog.String("step", stepID),
		slog.String("run_id", resp.ID),
		slog.String("status", string(resp.Status)))
}
