package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/alejandrokeller/allan-plot/internal/config"
	apperrors "github.com/alejandrokeller/allan-plot/internal/errors"
	"github.com/alejandrokeller/allan-plot/internal/infrastructure"
	"github.com/alejandrokeller/allan-plot/pkg/contracts"
)

// Application holds everything one invocation is wired from.
type Application struct {
	Config    config.RunConfig
	Settings  *config.Settings
	Logger    *slog.Logger
	Telemetry *infrastructure.Telemetry
	Runner    *Runner
}

// NewApplication resolves settings and run options from cl, then brings up
// logging and telemetry. Console messages go to stdout and structured logs
// to stderr. Bad settings or options come back as CONFIG errors; sinks that
// cannot be opened come back as STORAGE errors.
func NewApplication(cl *config.CommandLine, stdout, stderr io.Writer) (*Application, error) {
	settings, err := config.LoadSettings(cl.ConfigFile)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to load settings", err)
	}
	cl.Apply(settings)
	if err := settings.Validate(); err != nil {
		return nil, apperrors.NewConfigError("invalid settings", err)
	}

	runCfg, err := config.NewRunConfig(cl.Options)
	if err != nil {
		return nil, err
	}

	logger, err := infrastructure.InitializeLogger(settings.Logging, stderr)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to initialize logger", err)
	}

	telemetry, err := infrastructure.InitTelemetry(settings.Telemetry, logger)
	if err != nil {
		_ = infrastructure.CloseLogFile()
		return nil, apperrors.NewStorageError("failed to initialize telemetry", err)
	}

	logger.Debug("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("variant", runCfg.Variant().String()),
		slog.String("taus", runCfg.TauPolicy().String()),
		slog.Float64("interval", runCfg.Interval()),
		slog.Any("columns", runCfg.Columns()),
		slog.String("output_dir", runCfg.OutputDir()))

	return &Application{
		Config:    runCfg,
		Settings:  settings,
		Logger:    logger,
		Telemetry: telemetry,
		Runner:    NewRunner(runCfg, stdout, logger, telemetry),
	}, nil
}

// Run processes the configured target under a fresh run id.
func (a *Application) Run(ctx context.Context) (RunSummary, error) {
	return a.Runner.Run(infrastructure.EnsureRunID(ctx))
}

// Stop flushes telemetry sinks and closes the log file.
func (a *Application) Stop(ctx context.Context) error {
	var firstErr error
	if a.Telemetry != nil {
		if err := a.Telemetry.Shutdown(ctx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down telemetry", slog.String("error", err.Error()))
			firstErr = err
		}
	}
	if err := infrastructure.CloseLogFile(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
