// Package version holds build metadata.
package version

// Overridden by the release build via
// -ldflags "-X github.com/parcelworks/stacker/internal/version.Version=...".
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
