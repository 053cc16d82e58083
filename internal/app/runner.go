package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/alejandrokeller/allan-plot/internal/config"
	"github.com/alejandrokeller/allan-plot/internal/dataprocessing"
	"github.com/alejandrokeller/allan-plot/internal/files"
	"github.com/alejandrokeller/allan-plot/internal/infrastructure"
	"github.com/alejandrokeller/allan-plot/internal/validation"
)

// NoTargetMessage is printed when neither an input file nor a batch folder
// was given.
const NoTargetMessage = "Error: Please provide either --input_csv or --batch_folder"

// RunSummary counts the files a run handled.
type RunSummary struct {
	Files   int
	Written int
	Skipped int
	Failed  int
}

func (s RunSummary) String() string {
	return fmt.Sprintf("Processed %d file(s): %d written, %d skipped, %d failed",
		s.Files, s.Written, s.Skipped, s.Failed)
}

func (s *RunSummary) add(outcome dataprocessing.FileOutcome) {
	s.Files++
	switch outcome {
	case dataprocessing.FileWritten:
		s.Written++
	case dataprocessing.FileSkipped:
		s.Skipped++
	default:
		s.Failed++
	}
}

// Runner resolves the run target and feeds its files to a FileProcessor one
// at a time.
type Runner struct {
	cfg       config.RunConfig
	console   io.Writer
	logger    *slog.Logger
	tracer    trace.Tracer
	metrics   *infrastructure.RunMetrics
	validator *validation.FileValidator
	processor *dataprocessing.FileProcessor
}

// NewRunner creates a runner. telemetry may be nil.
func NewRunner(cfg config.RunConfig, console io.Writer, logger *slog.Logger, telemetry *infrastructure.Telemetry) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if console == nil {
		console = io.Discard
	}

	r := &Runner{
		cfg:       cfg,
		console:   console,
		logger:    infrastructure.WithComponent(logger, "runner"),
		tracer:    noop.NewTracerProvider().Tracer(infrastructure.InstrumentationName),
		validator: validation.NewFileValidator(logger),
		processor: dataprocessing.NewFileProcessor(cfg, console, logger, telemetry),
	}
	if telemetry != nil {
		r.tracer = telemetry.Tracer
		r.metrics = telemetry.Metrics
	}
	return r
}

// Run creates the output directory and processes the target. A failure in
// one file is reported and counted; it never stops the run. The returned
// error is set only when the run could not start.
func (r *Runner) Run(ctx context.Context) (RunSummary, error) {
	var summary RunSummary

	if err := r.validator.EnsureOutputDirectory(r.cfg.OutputDir()); err != nil {
		return summary, err
	}

	mode, target := r.cfg.Target()
	if mode == config.TargetFile && r.cfg.BatchFolder() != "" {
		r.logger.WarnContext(ctx, "Both --input_csv and --batch_folder given, using --input_csv",
			slog.String("input_csv", r.cfg.InputCSV()),
			slog.String("batch_folder", r.cfg.BatchFolder()))
	}

	ctx, span := r.tracer.Start(ctx, "run", trace.WithAttributes(
		attribute.String("target.mode", mode.String()),
		attribute.String("target.path", target)))
	defer span.End()

	var inputs []string
	switch mode {
	case config.TargetNone:
		fmt.Fprintln(r.console, NoTargetMessage)
		return summary, nil
	case config.TargetFile:
		inputs = []string{target}
	case config.TargetFolder:
		found, err := r.listBatch(target)
		if err != nil {
			return summary, err
		}
		inputs = found
	}

	for _, path := range inputs {
		outcome := r.processOne(ctx, path)
		summary.add(outcome)
		r.metrics.RecordFile(ctx, outcome.String())
	}

	span.SetAttributes(
		attribute.Int("files", summary.Files),
		attribute.Int("written", summary.Written),
		attribute.Int("failed", summary.Failed))
	r.logger.InfoContext(ctx, "Run complete",
		slog.Int("files", summary.Files),
		slog.Int("written", summary.Written),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed))
	if mode == config.TargetFolder {
		fmt.Fprintln(r.console, summary.String())
	}
	return summary, nil
}

func (r *Runner) listBatch(dir string) ([]string, error) {
	if err := r.validator.ValidateInputDirectory(dir); err != nil {
		return nil, err
	}
	found, err := files.FindFilesWithSuffix(dir, config.InputExtension)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(found))
	var total int64
	for _, f := range found {
		paths = append(paths, f.Path)
		total += f.Size
	}
	r.logger.Debug("Batch folder listed",
		slog.String("directory", dir),
		slog.Int("files", len(paths)),
		slog.Int64("bytes", total))
	return paths, nil
}

func (r *Runner) processOne(ctx context.Context, path string) dataprocessing.FileOutcome {
	if err := r.validator.ValidateInputFile(path); err != nil {
		r.reportFailure(ctx, path, err)
		return dataprocessing.FileFailed
	}

	outcome, err := r.processor.ProcessFile(ctx, path)
	if err != nil {
		r.reportFailure(ctx, path, err)
		return dataprocessing.FileFailed
	}
	return outcome
}

func (r *Runner) reportFailure(ctx context.Context, path string, err error) {
	fmt.Fprintf(r.console, "Error: failed to process %s: %v\n", path, err)
	r.logger.ErrorContext(ctx, "File failed",
		slog.String("file", path),
		slog.String("error", err.Error()))
}
