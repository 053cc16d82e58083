package infrastructure

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrokeller/allan-plot/internal/config"
)

func TestInitTelemetry_WritesSinks(t *testing.T) {
	dir := t.TempDir()
	cfg := config.TelemetryConfig{
		ServiceName: "allan-test",
		MetricsFile: filepath.Join(dir, "metrics", "run.prom"),
		TraceFile:   filepath.Join(dir, "trace.json"),
	}

	tel, err := InitTelemetry(cfg, nil)
	require.NoError(t, err)

	ctx, span := tel.Tracer.Start(context.Background(), "process_file")
	tel.Metrics.RecordFile(ctx, OutcomeWritten)
	tel.Metrics.RecordColumn(ctx, OutcomeComputed)
	tel.Metrics.RecordColumn(ctx, OutcomeSkipped)
	tel.Metrics.RecordEstimate(ctx, 3*time.Millisecond, "overlapping")
	span.End()

	require.NoError(t, tel.Shutdown(context.Background()))

	metrics, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "allan_files_processed_total")
	assert.Contains(t, string(metrics), `outcome="written"`)
	assert.Contains(t, string(metrics), "allan_columns_processed_total")
	assert.Contains(t, string(metrics), "allan_estimate_duration_seconds")

	spans, err := os.ReadFile(cfg.TraceFile)
	require.NoError(t, err)
	assert.Contains(t, string(spans), "process_file")
}

func TestInitTelemetry_NoSinks(t *testing.T) {
	tel, err := InitTelemetry(config.TelemetryConfig{ServiceName: "allan-test"}, nil)
	require.NoError(t, err)

	_, span := tel.Tracer.Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()

	tel.Metrics.RecordFile(context.Background(), OutcomeSkipped)

	families, err := tel.Gatherer().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestRunMetrics_NilSafe(t *testing.T) {
	var m *RunMetrics
	assert.NotPanics(t, func() {
		m.RecordFile(context.Background(), OutcomeFailed)
		m.RecordColumn(context.Background(), OutcomeSkipped)
		m.RecordEstimate(context.Background(), time.Second, "normal")
	})
}
