// Package version carries build metadata injected via ldflags.
package version

import "fmt"

var (
	// Version is the release tag, e.g. "v0.3.0".
	Version = "v0.3.0"

	// Commit is the git short hash of the build.
	Commit = "unknown"

	// Date is the build timestamp.
	Date = "unknown"
)

// String renders the build metadata on one line.
func String() string {
	return fmt.Sprintf("vidgate %s (commit: %s, built: %s)", Version, Commit, Date)
}
