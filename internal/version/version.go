// Package version exposes build metadata injected at link time.
package version

import "fmt"

// Set via -ldflags "-X github.com/HerbHall/themeforge/internal/version.Version=..."
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info returns the full version string for the version subcommand.
func Info() string {
	return fmt.Sprintf("themeforge %s (commit %s, built %s)", Version, Commit, Date)
}

// Short returns just the version number.
func Short() string {
	return Version
}
