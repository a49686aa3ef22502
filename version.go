package refetch

import (
	"fmt"
	"runtime"
)

// Build metadata. Version is the semantic version of the library; the rest is
// intended to be overridden with -ldflags at build time.
var (
	Version   = "v0.3.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// VersionString returns a single human-readable line describing this build.
func VersionString() string {
	return fmt.Sprintf("refetch %s (commit %s, built %s, %s)",
		Version, GitCommit, BuildDate, runtime.Version())
}

// VersionInfo returns the build metadata as key/value pairs suitable for
// structured log fields.
func VersionInfo() map[string]string {
	return map[string]string{
		"version":    Version,
		"commit":     GitCommit,
		"build_date": BuildDate,
		"go_version": runtime.Version(),
	}
}
