package config

// Application constants
const (
	AppName = "allan-deviation"

	// EnvPrefix namespaces every environment variable read by LoadSettings.
	EnvPrefix = "ADEV"

	// Defaults mirror the command line defaults.
	DefaultInterval  = 1.0
	DefaultVariant   = "normal"
	DefaultTaus      = "octave"
	DefaultDelimiter = ";"
	DefaultOutputDir = "output"

	DefaultLogLevel    = "warn"
	DefaultLogOutput   = "console"
	DefaultLogFile     = "logs/allan-deviation.log"
	DefaultServiceName = "allan-deviation"

	// Output naming, relative to the output directory.
	CSVSuffix  = "_adev.csv"
	PlotSuffix = "_plot.png"

	// InputExtension selects the batch folder entries that are processed.
	InputExtension = ".csv"
)
