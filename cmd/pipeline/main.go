// Command pipeline runs the forecasting pipeline.
//
//	pipeline -mode transform   parse the raw feed and write daily and history artifacts
//	pipeline -mode evaluate    score completed forecast exports and archive them
//	pipeline -mode serve       run both on their cron schedules with the status server
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"forecastpipe/internal/app"
	"forecastpipe/internal/config"
	"forecastpipe/internal/infrastructure"
	"forecastpipe/internal/operations"
	"forecastpipe/pkg/contracts"
)

const (
	modeTransform = "transform"
	modeEvaluate  = "evaluate"
	modeServe     = "serve"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		slog.Error("Pipeline failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

type options struct {
	mode       string
	configPath string
	version    bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("pipeline", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.mode, "mode", modeServe, "run mode: transform, evaluate or serve")
	fs.StringVar(&opts.configPath, "config", "", "YAML config file (defaults to "+config.ConfigFileEnv+" or config.yaml)")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	switch opts.mode {
	case modeTransform, modeEvaluate, modeServe:
		return opts, nil
	default:
		return opts, fmt.Errorf("unknown mode %q", opts.mode)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if opts.version {
		_, err := fmt.Fprintln(stderr, contracts.GetFullVersionString())
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	ctx = infrastructure.ContextWithTraceID(ctx)
	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "Shutdown error", slog.String("error", err.Error()))
		}
	}()

	if opts.mode == modeServe {
		return a.Serve(ctx)
	}

	step := operations.StepIDTransform
	if opts.mode == modeEvaluate {
		step = operations.StepIDEvaluate
	}
	resp, err := a.RunOnce(ctx, step)
	if resp != nil {
		logger.InfoContext(ctx, "Run finished",
			slog.String("run_id", resp.ID),
			slog.String("status", string(resp.Status)),
			slog.Duration("duration", resp.Duration),
			slog.Any("results", resp.Results))
	}
	if err != nil {
		return err
	}
	if resp.Status != operations.RunStatusCompleted {
		return errors.New("run did not complete: " + string(resp.Status))
	}
	return nil
}
