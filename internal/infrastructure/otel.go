package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/alejandrokeller/allan-plot/internal/config"
	"github.com/alejandrokeller/allan-plot/pkg/contracts"
)

// InstrumentationName identifies this module's tracer and meter.
const InstrumentationName = "github.com/alejandrokeller/allan-plot"

// Outcome labels shared by file and column metrics.
const (
	OutcomeWritten  = "written"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
	OutcomeComputed = "computed"
)

// Telemetry bundles the tracer and run metrics of one invocation, plus the
// sinks that are flushed on Shutdown.
type Telemetry struct {
	Tracer  trace.Tracer
	Metrics *RunMetrics

	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	registry       *prometheus.Registry
	traceFile      *os.File
	metricsFile    string
	logger         *slog.Logger
}

// InitTelemetry wires tracing and metrics. Spans are exported as JSON to
// cfg.TraceFile when it is set and dropped otherwise; metrics are always
// collected and written in Prometheus text format to cfg.MetricsFile on
// Shutdown when it is set.
func InitTelemetry(cfg config.TelemetryConfig, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(contracts.Version),
	)

	t := &Telemetry{
		metricsFile: cfg.MetricsFile,
		logger:      logger,
	}

	if cfg.TraceFile != "" {
		if err := t.initTracing(cfg.TraceFile, res); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	} else {
		t.Tracer = noop.NewTracerProvider().Tracer(InstrumentationName)
	}

	if err := t.initMetrics(res); err != nil {
		_ = t.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.Debug("Telemetry initialized",
		slog.String("service", cfg.ServiceName),
		slog.String("trace_file", cfg.TraceFile),
		slog.String("metrics_file", cfg.MetricsFile))
	return t, nil
}

func (t *Telemetry) initTracing(path string, res *resource.Resource) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create trace directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(file),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	// Syncer: spans are written as they end, the run is sequential anyway.
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	t.traceFile = file
	t.tracerProvider = tp
	t.Tracer = tp.Tracer(InstrumentationName, trace.WithInstrumentationVersion(contracts.Version))
	return nil
}

func (t *Telemetry) initMetrics(res *resource.Resource) error {
	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(
		otelprom.WithRegisterer(registry),
		otelprom.WithoutTargetInfo(),
		otelprom.WithoutScopeInfo(),
	)
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(mp)

	metrics, err := NewRunMetrics(mp.Meter(InstrumentationName, metric.WithInstrumentationVersion(contracts.Version)))
	if err != nil {
		return err
	}

	t.registry = registry
	t.meterProvider = mp
	t.Metrics = metrics
	return nil
}

// Gatherer exposes the metrics registry, mainly for tests.
func (t *Telemetry) Gatherer() prometheus.Gatherer {
	return t.registry
}

// Shutdown writes the metrics file (if configured), flushes spans and closes
// the trace file. It is safe to call on a partially initialized Telemetry.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if t.metricsFile != "" && t.registry != nil {
		if err := os.MkdirAll(filepath.Dir(t.metricsFile), 0755); err != nil {
			errs = append(errs, fmt.Errorf("failed to create metrics directory: %w", err))
		} else if err := prometheus.WriteToTextfile(t.metricsFile, t.registry); err != nil {
			errs = append(errs, fmt.Errorf("failed to write metrics file: %w", err))
		} else {
			t.logger.Debug("Metrics written", slog.String("path", t.metricsFile))
		}
	}
	if t.meterProvider != nil {
		if err := t.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shut down meter provider: %w", err))
		}
	}
	if t.tracerProvider != nil {
		if err := t.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shut down tracer provider: %w", err))
		}
	}
	if t.traceFile != nil {
		if err := t.traceFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close trace file: %w", err))
		}
		t.traceFile = nil
	}
	return errors.Join(errs...)
}

// RunMetrics counts what a run did. A nil *RunMetrics records nothing.
type RunMetrics struct {
	files    metric.Int64Counter
	columns  metric.Int64Counter
	estimate metric.Float64Histogram
}

// NewRunMetrics creates the run instruments on meter.
func NewRunMetrics(meter metric.Meter) (*RunMetrics, error) {
	files, err := meter.Int64Counter(
		"allan_files_processed",
		metric.WithDescription("Input files handled, by outcome"),
	)
	if err != nil {
		return nil, err
	}

	columns, err := meter.Int64Counter(
		"allan_columns_processed",
		metric.WithDescription("Requested columns handled, by outcome"),
	)
	if err != nil {
		return nil, err
	}

	estimate, err := meter.Float64Histogram(
		"allan_estimate_duration",
		metric.WithDescription("Time spent in the deviation estimator per column"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RunMetrics{files: files, columns: columns, estimate: estimate}, nil
}

// RecordFile counts one input file with the given outcome.
func (m *RunMetrics) RecordFile(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.files.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordColumn counts one requested column with the given outcome.
func (m *RunMetrics) RecordColumn(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.columns.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordEstimate observes one estimator call.
func (m *RunMetrics) RecordEstimate(ctx context.Context, d time.Duration, variant string) {
	if m == nil {
		return
	}
	m.estimate.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("variant", variant)))
}
