// Package version holds build metadata injected via ldflags:
//
//	-X github.com/nyaybodh/nyaybodh/internal/version.Version=v1.2.0
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String describes the build for humans.
func String() string {
	return fmt.Sprintf("nyaybodh %s (commit %s, built %s)", Version, Commit, Date)
}

// UserAgent is sent with every request to the case API.
func UserAgent() string {
	return "nyaybodh/" + Version
}
