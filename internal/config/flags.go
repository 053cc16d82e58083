package config

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"
)

// CommandLine is the parsed command line: run options plus the flags that
// override ambient Settings.
type CommandLine struct {
	Options     Options
	ConfigFile  string
	ShowVersion bool

	logLevel    string
	metricsFile string
	traceFile   string
	changed     map[string]bool
}

// ParseFlags parses args (without the program name). Column names are taken
// verbatim, commas and quotes included. Positional arguments left after flag
// parsing are appended to the column list so that "-c a b c" works the way
// it does with nargs-style parsers.
func ParseFlags(args []string, output io.Writer) (*CommandLine, error) {
	cl := &CommandLine{Options: DefaultOptions()}
	opts := &cl.Options

	fs := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(output, "Calculate Allan deviation for one or many CSV files.\n\n")
		fmt.Fprintf(output, "Usage: %s (--input_csv FILE | --batch_folder DIR) -c COL [COL ...] [flags]\n\n", AppName)
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.InputCSV, "input_csv", "", "Path to a single CSV file")
	fs.StringVar(&opts.BatchFolder, "batch_folder", "", "Directory containing multiple CSV files")
	fs.Float64VarP(&opts.Interval, "rate", "r", DefaultInterval, "Sampling interval (seconds)")
	fs.StringVarP(&opts.Type, "type", "t", DefaultVariant, "Type of Allan deviation to compute: normal | overlapping")
	fs.StringArrayVarP(&opts.Columns, "columns", "c", nil, "Column names for which to calculate Allan deviation (required, repeatable)")
	fs.StringVar(&opts.Taus, "taus", DefaultTaus, "Tau values to use: all | octave | decade")
	fs.StringVar(&opts.Delimiter, "delimiter", DefaultDelimiter, "CSV delimiter")
	fs.StringVar(&opts.OutputDir, "output_dir", DefaultOutputDir, "Directory to save output CSVs and plots")

	fs.StringVar(&cl.ConfigFile, "config", "", "Optional YAML settings file (logging, telemetry)")
	fs.StringVar(&cl.logLevel, "log_level", DefaultLogLevel, "Structured log level: debug | info | warn | error")
	fs.StringVar(&cl.metricsFile, "metrics_file", "", "Write run metrics in Prometheus text format to this file")
	fs.StringVar(&cl.traceFile, "trace_file", "", "Write trace spans as JSON to this file")
	fs.BoolVar(&cl.ShowVersion, "version", false, "Print version information and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	opts.Columns = append(opts.Columns, fs.Args()...)

	cl.changed = make(map[string]bool)
	fs.Visit(func(f *pflag.Flag) {
		cl.changed[f.Name] = true
	})
	return cl, nil
}

// Apply overlays flags that were set explicitly onto s. Flags win over the
// settings file and the environment.
func (cl *CommandLine) Apply(s *Settings) {
	if cl.changed["log_level"] {
		s.Logging.Level = cl.logLevel
	}
	if cl.changed["metrics_file"] {
		s.Telemetry.MetricsFile = cl.metricsFile
	}
	if cl.changed["trace_file"] {
		s.Telemetry.TraceFile = cl.traceFile
	}
}
