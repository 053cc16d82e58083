// Package contracts holds values shared by the command and the output writers.
package contracts

import (
	"fmt"
	"runtime"
)

const (
	Version = "0.3.0"

	// OutputFormatVersion identifies the _adev.csv column layout.
	OutputFormatVersion = "v1"
)

// Set with -ldflags "-X".
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version      string `json:"version"`
	OutputFormat string `json:"output_format"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	Runtime      string `json:"runtime"`
	Platform     string `json:"platform"`
}

func CurrentBuild() BuildInfo {
	return BuildInfo{
		Version:      Version,
		OutputFormat: OutputFormatVersion,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		Runtime:      runtime.Version(),
		Platform:     runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func GetVersionString() string {
	return "allan-deviation v" + Version
}

// GetFullVersionString is printed by --version.
func GetFullVersionString() string {
	b := CurrentBuild()
	return fmt.Sprintf("%s (output %s, commit %s, built %s, %s %s)",
		GetVersionString(), b.OutputFormat, b.GitCommit, b.BuildTime, b.Runtime, b.Platform)
}
