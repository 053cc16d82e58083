// Package config resolves everything a run needs to know before it starts.
//
// Two kinds of configuration live here:
//
//   - RunConfig: the immutable description of one run (input target, sampling
//     interval, estimator variant, tau policy, delimiter, columns, output
//     directory). It is built once from the command line by NewRunConfig and
//     passed by value to every component; nothing mutates it afterwards.
//   - Settings: ambient concerns such as structured logging and telemetry
//     sinks.
//
// # Configuration Sources
//
// Settings are loaded in order of increasing precedence:
//
//  1. Defaults (DefaultSettings)
//  2. YAML file (--config, or allan.yaml / configs/allan.yaml)
//  3. Environment variables with the ADEV_ prefix
//  4. Explicit command line flags (--log_level, --metrics_file, --trace_file)
//
// # Environment Variables
//
//	ADEV_LOGGING_LEVEL=debug
//	ADEV_LOGGING_OUTPUT=both
//	ADEV_LOGGING_FILE_PATH=logs/allan.log
//	ADEV_TELEMETRY_METRICS_FILE=out/allan.prom
//	ADEV_TELEMETRY_TRACE_FILE=out/trace.json
//
// # Validation
//
// Options are checked with go-playground/validator before a RunConfig is
// built; failures come back as a CONFIG AppError naming the offending flag.
package config
