// Package version holds build information injected at link time.
package version

import "fmt"

var (
	// Version is the semantic version, set via ldflags.
	Version = "dev"
	// Commit is the short git commit hash, set via ldflags.
	Commit = "unknown"
	// GitTime is the commit timestamp in ISO 8601 UTC format, set via ldflags.
	GitTime = "unknown"
)

// Info returns the build information as reported by /api/version.
func Info() map[string]string {
	return map[string]string{
		"version":    Version,
		"commit":     Commit,
		"build_time": GitTime,
	}
}

// String formats the build information for `wiki --version`.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, GitTime)
}
