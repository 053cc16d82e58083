// Package app wires one invocation of the tool together and runs it.
//
// # Initialization Flow
//
//  1. Load Settings (defaults, YAML file, environment) and overlay flags
//  2. Initialize logging and telemetry
//  3. Resolve the immutable RunConfig from the command line options
//  4. Build the Runner with its validator, discovery and file processor
//
// # Run
//
// Runner.Run creates the output directory, then processes either the single
// input file or every .csv entry of the batch folder, in name order. Each
// file is handled independently; failures are printed, logged and counted
// in the RunSummary.
//
// # Error Handling
//
// Only errors that prevent the run from starting are returned: settings or
// option validation, an output directory that cannot be created, or a batch
// folder that cannot be listed. The app never calls os.Exit; main decides
// the exit code.
package app
