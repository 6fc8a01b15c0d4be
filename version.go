package untrace

import "github.com/untrace-dev/untrace-go/telemetry"

// Version information for the Untrace Go SDK
const (
	// Name is sent as untrace.sdk.name and in the User-Agent header
	Name = telemetry.SDKName

	// Version is the current SDK version
	Version = telemetry.SDKVersion
)

// Set during release builds via -ldflags.
var (
	BuildDate = "development"
	GitCommit = "unknown"
)
