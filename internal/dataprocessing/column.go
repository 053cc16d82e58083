package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/alejandrokeller/allan-plot/internal/allan"
	"github.com/alejandrokeller/allan-plot/internal/config"
	apperrors "github.com/alejandrokeller/allan-plot/internal/errors"
	"github.com/alejandrokeller/allan-plot/internal/infrastructure"
)

// MinSamples is the smallest usable series length.
const MinSamples = 2

// NamedResult is one column's deviation result.
type NamedResult struct {
	Name   string
	Result allan.Result
}

// ColumnSet is what the requested columns of one file produced.
type ColumnSet struct {
	Combined *CombinedTable
	// Results holds per-column results in request order. A column requested
	// twice keeps its first position with the latest result.
	Results []NamedResult
	Skipped int
}

// Empty reports whether no column produced a result.
func (s ColumnSet) Empty() bool {
	return len(s.Results) == 0
}

// ColumnProcessor validates requested columns and runs the estimator on them.
type ColumnProcessor struct {
	cfg     config.RunConfig
	logger  *slog.Logger
	console io.Writer
	metrics *infrastructure.RunMetrics
}

// NewColumnProcessor creates a column processor. Warnings for skipped
// columns are printed to console.
func NewColumnProcessor(cfg config.RunConfig, console io.Writer, logger *slog.Logger, metrics *infrastructure.RunMetrics) *ColumnProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	if console == nil {
		console = io.Discard
	}
	return &ColumnProcessor{
		cfg:     cfg,
		logger:  infrastructure.WithComponent(logger, "column_processor"),
		console: console,
		metrics: metrics,
	}
}

// Process computes the deviation of one column of table. file names the
// table's source in messages. A skipped column is reported as an *AppError
// whose Message is the user-facing reason.
func (p *ColumnProcessor) Process(ctx context.Context, table *Table, file, name string) (allan.Result, error) {
	col, ok := table.Column(name)
	if !ok {
		return allan.Result{}, apperrors.NewAppError(apperrors.ErrTypeNotFound,
			fmt.Sprintf("Column '%s' not found in %s. Skipping.", name, file), nil).
			WithContext("column", name)
	}

	if !col.Valid() {
		return allan.Result{}, apperrors.NewParsingError(
			fmt.Sprintf("Column '%s' in %s has %d non-numeric value(s), first %q. Skipping.",
				name, file, col.InvalidCells, col.FirstInvalid), nil).
			WithContext("column", name)
	}

	series := col.DropMissing()
	if len(series) < MinSamples {
		return allan.Result{}, apperrors.NewValidationError(
			fmt.Sprintf("Not enough data in column '%s' to calculate Allan deviation. Skipping.", name)).
			WithContext("column", name).
			WithContext("samples", len(series))
	}

	start := time.Now()
	res, err := allan.Compute(series, p.cfg.Rate(), p.cfg.Variant(), p.cfg.TauPolicy())
	p.metrics.RecordEstimate(ctx, time.Since(start), p.cfg.Variant().String())
	if err != nil {
		return allan.Result{}, apperrors.NewEstimatorError(
			fmt.Sprintf("Allan deviation failed for column '%s' in %s: %v. Skipping.", name, file, err), err).
			WithContext("column", name)
	}

	p.logger.DebugContext(ctx, "Column processed",
		slog.String("file", file),
		slog.String("column", name),
		slog.Int("samples", len(series)),
		slog.Int("points", res.Len()))
	return res, nil
}

// ProcessAll runs Process over the configured columns in order, printing a
// warning for every skipped column and merging results into a combined table.
func (p *ColumnProcessor) ProcessAll(ctx context.Context, table *Table, file string) ColumnSet {
	set := ColumnSet{Combined: NewCombinedTable()}
	span := trace.SpanFromContext(ctx)

	for _, name := range p.cfg.Columns() {
		res, err := p.Process(ctx, table, file, name)
		if err != nil {
			p.skip(ctx, span, file, name, err)
			set.Skipped++
			continue
		}

		if dropped := set.Combined.Add(name, res); dropped > 0 {
			p.logger.WarnContext(ctx, "Taus missing from the first column were dropped from the table",
				slog.String("file", file),
				slog.String("column", name),
				slog.Int("dropped", dropped))
		}
		set.Results = upsertResult(set.Results, NamedResult{Name: name, Result: res})

		p.metrics.RecordColumn(ctx, infrastructure.OutcomeComputed)
		span.AddEvent("column_computed", trace.WithAttributes(
			attribute.String("column", name),
			attribute.Int("points", res.Len())))
	}
	return set
}

func (p *ColumnProcessor) skip(ctx context.Context, span trace.Span, file, name string, err error) {
	reason := apperrors.TypeOf(err)
	fmt.Fprintf(p.console, "Warning: %s\n", warningText(err))

	p.logger.WarnContext(ctx, "Column skipped",
		slog.String("file", file),
		slog.String("column", name),
		slog.String("reason", string(reason)),
		slog.String("error", err.Error()))
	p.metrics.RecordColumn(ctx, infrastructure.OutcomeSkipped)
	span.AddEvent("column_skipped", trace.WithAttributes(
		attribute.String("column", name),
		attribute.String("reason", string(reason))))
}

func warningText(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func upsertResult(results []NamedResult, r NamedResult) []NamedResult {
	for i := range results {
		if results[i].Name == r.Name {
			results[i] = r
			return results
		}
	}
	return append(results, r)
}
