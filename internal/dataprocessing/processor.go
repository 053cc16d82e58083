package dataprocessing

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/alejandrokeller/allan-plot/internal/config"
	apperrors "github.com/alejandrokeller/allan-plot/internal/errors"
	"github.com/alejandrokeller/allan-plot/internal/exporter"
	"github.com/alejandrokeller/allan-plot/internal/files"
	"github.com/alejandrokeller/allan-plot/internal/infrastructure"
	"github.com/alejandrokeller/allan-plot/internal/plot"
)

// FileOutcome is what processing one input file resulted in.
type FileOutcome int

const (
	FileFailed FileOutcome = iota
	FileSkipped
	FileWritten
)

func (o FileOutcome) String() string {
	switch o {
	case FileWritten:
		return infrastructure.OutcomeWritten
	case FileSkipped:
		return infrastructure.OutcomeSkipped
	default:
		return infrastructure.OutcomeFailed
	}
}

// FileArtifacts are the paths written for one input file.
type FileArtifacts struct {
	CSV  string
	Plot string
}

// FileProcessor turns one input table into its result CSV and plot.
type FileProcessor struct {
	cfg      config.RunConfig
	logger   *slog.Logger
	console  io.Writer
	tracer   trace.Tracer
	columns  *ColumnProcessor
	writer   *exporter.CSVWriter
	renderer plot.Renderer
}

// NewFileProcessor creates a file processor. telemetry may be nil.
func NewFileProcessor(cfg config.RunConfig, console io.Writer, logger *slog.Logger, telemetry *infrastructure.Telemetry) *FileProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	if console == nil {
		console = io.Discard
	}

	var (
		tracer  trace.Tracer = noop.NewTracerProvider().Tracer(infrastructure.InstrumentationName)
		metrics *infrastructure.RunMetrics
	)
	if telemetry != nil {
		tracer = telemetry.Tracer
		metrics = telemetry.Metrics
	}

	return &FileProcessor{
		cfg:      cfg,
		logger:   infrastructure.WithComponent(logger, "file_processor"),
		console:  console,
		tracer:   tracer,
		columns:  NewColumnProcessor(cfg, console, logger, metrics),
		writer:   exporter.NewCSVWriter(logger),
		renderer: plot.NewPNGRenderer(),
	}
}

// ArtifactPaths returns where results for path are written.
func (p *FileProcessor) ArtifactPaths(path string) FileArtifacts {
	return FileArtifacts{
		CSV:  files.OutputPath(p.cfg.OutputDir(), path, config.CSVSuffix),
		Plot: files.OutputPath(p.cfg.OutputDir(), path, config.PlotSuffix),
	}
}

// ProcessFile reads path, computes every requested column and writes the
// combined CSV followed by the plot. A file where no column produced a
// result is skipped without writing anything.
func (p *FileProcessor) ProcessFile(ctx context.Context, path string) (FileOutcome, error) {
	ctx, span := p.tracer.Start(ctx, "process_file", trace.WithAttributes(
		attribute.String("file.path", path),
		attribute.String("allan.variant", p.cfg.Variant().String()),
		attribute.String("allan.taus", p.cfg.TauPolicy().String())))
	defer span.End()

	outcome, err := p.processFile(ctx, path)
	span.SetAttributes(attribute.String("outcome", outcome.String()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return outcome, err
}

func (p *FileProcessor) processFile(ctx context.Context, path string) (FileOutcome, error) {
	table, err := ReadTable(path, p.cfg.Delimiter())
	if err != nil {
		return FileFailed, err
	}
	p.logger.DebugContext(ctx, "Table read",
		slog.String("file", path),
		slog.Int("rows", table.Rows()),
		slog.Int("columns", len(table.Headers())))

	set := p.columns.ProcessAll(ctx, table, path)
	if set.Empty() {
		fmt.Fprintf(p.console, "No valid data processed in %s. Skipping.\n", path)
		p.logger.WarnContext(ctx, "No valid data processed",
			slog.String("file", path),
			slog.Int("skipped_columns", set.Skipped))
		return FileSkipped, nil
	}

	out := p.ArtifactPaths(path)

	if err := p.writer.WriteTable(out.CSV, set.Combined); err != nil {
		return FileFailed, apperrors.NewStorageError(fmt.Sprintf("failed to write %s", out.CSV), err).
			WithContext("file", path)
	}
	fmt.Fprintf(p.console, "Saved: %s\n", out.CSV)

	fig := plot.NewFigure(plotSeries(set.Results))
	if fig.Empty() {
		p.logger.WarnContext(ctx, "No positive deviations to plot",
			slog.String("file", path),
			slog.String("plot", out.Plot))
	}
	if err := p.renderer.Render(fig, out.Plot); err != nil {
		return FileFailed, apperrors.NewRenderError(fmt.Sprintf("failed to render %s", out.Plot), err).
			WithContext("file", path)
	}
	fmt.Fprintf(p.console, "Plot saved to '%s'\n", out.Plot)

	p.logger.InfoContext(ctx, "File processed",
		slog.String("file", path),
		slog.String("csv", out.CSV),
		slog.String("plot", out.Plot),
		slog.Any("columns", set.Combined.Names()),
		slog.Int("rows", set.Combined.Len()))
	return FileWritten, nil
}

func plotSeries(results []NamedResult) []plot.Series {
	series := make([]plot.Series, 0, len(results))
	for _, r := range results {
		series = append(series, plot.Series{
			Name: r.Name,
			Taus: r.Result.Taus,
			Devs: r.Result.Devs,
			Errs: r.Result.Errs,
		})
	}
	return series
}
