package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Settings holds the ambient configuration that is not part of a single run:
// logging and telemetry sinks.
type Settings struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// TelemetryConfig selects where spans and run metrics are written. Empty
// paths disable the corresponding sink.
type TelemetryConfig struct {
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
	TraceFile   string `yaml:"trace_file" envconfig:"TRACE_FILE"`
}

// DefaultSettings returns the settings used when nothing else is configured.
func DefaultSettings() *Settings {
	return &Settings{
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Output:   DefaultLogOutput,
			FilePath: DefaultLogFile,
		},
		Telemetry: TelemetryConfig{
			ServiceName: DefaultServiceName,
		},
	}
}

// LoadSettings builds Settings from defaults, then the YAML file (explicit
// path or the first well-known location found), then ADEV_* environment
// variables. Later sources win.
func LoadSettings(path string) (*Settings, error) {
	cfg := DefaultSettings()

	if path == "" {
		path = findSettingsFile()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; keys absent from the file keep
// their current value.
func loadFromFile(path string, cfg *Settings) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate normalises and checks the settings.
func (s *Settings) Validate() error {
	if s.Logging.Level == "warning" {
		s.Logging.Level = "warn"
	}
	return validator.New().Struct(s)
}

// findSettingsFile returns the first settings file found in the common
// locations, or "" when there is none.
func findSettingsFile() string {
	locations := []string{
		"allan.yaml",
		"configs/allan.yaml",
	}

	for _, location := range locations {
		if info, err := os.Stat(location); err == nil && !info.IsDir() {
			return location
		}
	}
	return ""
}
