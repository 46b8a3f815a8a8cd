// Package version holds build metadata injected via ldflags.
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "0.1.0"
	Commit  = "unknown"
	Date    = "unknown"
)

// SDK is the name reported in the telemetry header.
const SDK = "upsearch-go"
