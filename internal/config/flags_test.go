package config

import (
	"bytes"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		validate func(t *testing.T, cl *CommandLine)
	}{
		{
			name: "defaults",
			args: []string{"--input_csv", "a.csv", "-c", "freq"},
			validate: func(t *testing.T, cl *CommandLine) {
				assert.Equal(t, "a.csv", cl.Options.InputCSV)
				assert.Equal(t, []string{"freq"}, cl.Options.Columns)
				assert.Equal(t, 1.0, cl.Options.Interval)
				assert.Equal(t, "normal", cl.Options.Type)
				assert.Equal(t, "octave", cl.Options.Taus)
				assert.Equal(t, ";", cl.Options.Delimiter)
				assert.Equal(t, "output", cl.Options.OutputDir)
				assert.False(t, cl.ShowVersion)
			},
		},
		{
			name: "short flags",
			args: []string{"--batch_folder", "in", "-r", "0.25", "-t", "overlapping", "-c", "x", "-c", "y"},
			validate: func(t *testing.T, cl *CommandLine) {
				assert.Equal(t, "in", cl.Options.BatchFolder)
				assert.Equal(t, 0.25, cl.Options.Interval)
				assert.Equal(t, "overlapping", cl.Options.Type)
				assert.Equal(t, []string{"x", "y"}, cl.Options.Columns)
			},
		},
		{
			name: "space separated columns",
			args: []string{"--input_csv", "a.csv", "-c", "ch1", "ch2", "ch3", "--taus", "all"},
			validate: func(t *testing.T, cl *CommandLine) {
				assert.Equal(t, []string{"ch1", "ch2", "ch3"}, cl.Options.Columns)
				assert.Equal(t, "all", cl.Options.Taus)
			},
		},
		{
			name: "column names kept verbatim",
			args: []string{"-c", "T, degC", "--columns", `phase "ns"`, "a,b"},
			validate: func(t *testing.T, cl *CommandLine) {
				assert.Equal(t, []string{"T, degC", `phase "ns"`, "a,b"}, cl.Options.Columns)
			},
		},
		{
			name: "repeated columns flag",
			args: []string{"-c", "a", "--columns", "b"},
			validate: func(t *testing.T, cl *CommandLine) {
				assert.Equal(t, []string{"a", "b"}, cl.Options.Columns)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cl, err := ParseFlags(tt.args, &out)
			require.NoError(t, err)
			tt.validate(t, cl)
		})
	}
}

func TestParseFlags_Errors(t *testing.T) {
	var out bytes.Buffer

	_, err := ParseFlags([]string{"--rate", "fast"}, &out)
	assert.Error(t, err)

	_, err = ParseFlags([]string{"--unknown"}, &out)
	assert.Error(t, err)

	out.Reset()
	_, err = ParseFlags([]string{"--help"}, &out)
	assert.ErrorIs(t, err, pflag.ErrHelp)
	assert.Contains(t, out.String(), "--batch_folder")
}

func TestCommandLine_Apply(t *testing.T) {
	var out bytes.Buffer
	cl, err := ParseFlags([]string{"--log_level", "debug", "--metrics_file", "m.prom"}, &out)
	require.NoError(t, err)

	s := DefaultSettings()
	s.Telemetry.TraceFile = "from-env.json"
	cl.Apply(s)

	assert.Equal(t, "debug", s.Logging.Level)
	assert.Equal(t, "m.prom", s.Telemetry.MetricsFile)
	assert.Equal(t, "from-env.json", s.Telemetry.TraceFile, "unset flags keep the loaded value")
}
