// Package version holds build metadata injected via ldflags.
package version

var (
	// Version is the semantic version of this build, set at link time.
	Version = "dev"
	// GitCommit is the git revision of this build, set at link time.
	GitCommit = "unknown"
)
