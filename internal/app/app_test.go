package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrokeller/allan-plot/internal/config"
	apperrors "github.com/alejandrokeller/allan-plot/internal/errors"
	"github.com/alejandrokeller/allan-plot/internal/shared/testutil"
)

func newRunner(t *testing.T, mutate func(*config.Options)) (*Runner, *bytes.Buffer, config.RunConfig) {
	t.Helper()

	opts := config.DefaultOptions()
	opts.Columns = []string{"x"}
	opts.OutputDir = filepath.Join(t.TempDir(), "out")
	if mutate != nil {
		mutate(&opts)
	}
	cfg, err := config.NewRunConfig(opts)
	require.NoError(t, err)

	var console bytes.Buffer
	logger, _ := testutil.NewTestLogger(t)
	return NewRunner(cfg, &console, logger, nil), &console, cfg
}

func outputNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRunner_BatchOneValidOneMissingColumn(t *testing.T) {
	inDir := t.TempDir()
	fx := testutil.NewMeasurementFixtures(inDir)
	fx.WriteTable(t, "a_valid.csv", []string{"x"}, testutil.FormatColumn(testutil.Ramp(16)))
	other := fx.WriteTable(t, "b_other.csv", []string{"y"}, testutil.FormatColumn(testutil.Ramp(16)))

	runner, console, cfg := newRunner(t, func(o *config.Options) {
		o.BatchFolder = inDir
	})

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, RunSummary{Files: 2, Written: 1, Skipped: 1}, summary)
	assert.ElementsMatch(t, []string{"a_valid_adev.csv", "a_valid_plot.png"}, outputNames(t, cfg.OutputDir()))
	assert.Equal(t, 1, strings.Count(console.String(), "Warning: Column 'x' not found in "+other+". Skipping."))
	assert.Contains(t, console.String(), "No valid data processed in "+other+". Skipping.")
	assert.Contains(t, console.String(), summary.String())
}

func TestRunner_BatchIsolatesMalformedFile(t *testing.T) {
	inDir := t.TempDir()
	fx := testutil.NewMeasurementFixtures(inDir)
	bad := fx.WriteRaw(t, "a_bad.csv", "x\n1\n2;3;4;5\n")
	fx.WriteTable(t, "b_good.csv", []string{"x"}, testutil.FormatColumn(testutil.Ramp(16)))
	fx.WriteTable(t, "c_ignored.txt", []string{"x"}, testutil.FormatColumn(testutil.Ramp(16)))
	fx.WriteTable(t, "d_upper.CSV", []string{"x"}, testutil.FormatColumn(testutil.Ramp(16)))
	require.NoError(t, os.Mkdir(filepath.Join(inDir, "nested.csv"), 0755))

	runner, console, cfg := newRunner(t, func(o *config.Options) {
		o.BatchFolder = inDir
	})

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, RunSummary{Files: 2, Written: 1, Failed: 1}, summary)
	assert.ElementsMatch(t, []string{"b_good_adev.csv", "b_good_plot.png"}, outputNames(t, cfg.OutputDir()))
	assert.Contains(t, console.String(), "Error: failed to process "+bad+":")
}

func TestRunner_SingleFile(t *testing.T) {
	fx := testutil.NewMeasurementFixtures(t.TempDir())
	input := fx.WriteTable(t, "clock.csv", []string{"x"}, testutil.FormatColumn(testutil.Ramp(10)))
	ignored := t.TempDir()
	fx2 := testutil.NewMeasurementFixtures(ignored)
	fx2.WriteTable(t, "other.csv", []string{"x"}, testutil.FormatColumn(testutil.Ramp(10)))

	runner, console, cfg := newRunner(t, func(o *config.Options) {
		o.InputCSV = input
		o.BatchFolder = ignored
		o.Type = "overlapping"
	})

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, RunSummary{Files: 1, Written: 1}, summary)
	assert.ElementsMatch(t, []string{"clock_adev.csv", "clock_plot.png"}, outputNames(t, cfg.OutputDir()))
	assert.Equal(t,
		"Saved: "+filepath.Join(cfg.OutputDir(), "clock_adev.csv")+"\n"+
			"Plot saved to '"+filepath.Join(cfg.OutputDir(), "clock_plot.png")+"'\n",
		console.String())
}

func TestRunner_SingleFileMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.csv")
	runner, console, _ := newRunner(t, func(o *config.Options) {
		o.InputCSV = missing
	})

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RunSummary{Files: 1, Failed: 1}, summary)
	assert.Contains(t, console.String(), "Error: failed to process "+missing)
}

func TestRunner_NoTarget(t *testing.T) {
	runner, console, cfg := newRunner(t, nil)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, RunSummary{}, summary)
	assert.Equal(t, NoTargetMessage+"\n", console.String())
	// the output directory is still created first
	info, err := os.Stat(cfg.OutputDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRunner_OutputDirectoryExists(t *testing.T) {
	runner, _, cfg := newRunner(t, nil)
	require.NoError(t, os.MkdirAll(cfg.OutputDir(), 0755))

	_, err := runner.Run(context.Background())
	assert.NoError(t, err)
}

func TestRunner_OutputDirectoryBlocked(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	runner, _, _ := newRunner(t, func(o *config.Options) {
		o.OutputDir = filepath.Join(blocker, "out")
	})

	_, err := runner.Run(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestRunner_MissingBatchFolder(t *testing.T) {
	runner, console, _ := newRunner(t, func(o *config.Options) {
		o.BatchFolder = filepath.Join(t.TempDir(), "missing")
	})

	_, err := runner.Run(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
	assert.Empty(t, console.String())
}

func TestRunSummary_String(t *testing.T) {
	s := RunSummary{Files: 3, Written: 1, Skipped: 1, Failed: 1}
	assert.Equal(t, "Processed 3 file(s): 1 written, 1 skipped, 1 failed", s.String())
}

func TestNewApplication(t *testing.T) {
	dir := t.TempDir()
	fx := testutil.NewMeasurementFixtures(dir)
	input := fx.WriteTable(t, "clock.csv", []string{"x"}, testutil.FormatColumn(testutil.Ramp(10)))
	metrics := filepath.Join(dir, "metrics.prom")
	outDir := filepath.Join(dir, "out")

	cl, err := config.ParseFlags([]string{
		"--input_csv", input,
		"-c", "x",
		"--output_dir", outDir,
		"--metrics_file", metrics,
		"--log_level", "error",
	}, &bytes.Buffer{})
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	application, err := NewApplication(cl, &stdout, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "error", application.Settings.Logging.Level)
	assert.Equal(t, []string{"x"}, application.Config.Columns())

	summary, err := application.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Written)
	require.NoError(t, application.Stop(context.Background()))

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "allan_files_processed_total")
	assert.Contains(t, string(data), `outcome="written"`)
	assert.Empty(t, stderr.String())
}

func TestNewApplication_SinkFailures(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	tests := []struct {
		name    string
		args    []string
		env     map[string]string
		message string
	}{
		{
			name:    "trace file under a regular file",
			args:    []string{"--trace_file", filepath.Join(blocker, "trace.json")},
			message: "failed to initialize telemetry",
		},
		{
			name: "log file under a regular file",
			env: map[string]string{
				"ADEV_LOGGING_OUTPUT":    "file",
				"ADEV_LOGGING_FILE_PATH": filepath.Join(blocker, "allan.log"),
			},
			message: "failed to initialize logger",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			args := append([]string{"--input_csv", "x.csv", "-c", "x"}, tt.args...)
			cl, err := config.ParseFlags(args, &bytes.Buffer{})
			require.NoError(t, err)

			_, err = NewApplication(cl, &bytes.Buffer{}, &bytes.Buffer{})
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage), err.Error())
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestNewApplication_InvalidOptions(t *testing.T) {
	cl, err := config.ParseFlags([]string{"--input_csv", "x.csv", "-c", "x", "--rate", "0"}, &bytes.Buffer{})
	require.NoError(t, err)

	_, err = NewApplication(cl, &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
	assert.Contains(t, err.Error(), "--rate must be greater than 0")
}
