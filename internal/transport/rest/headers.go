package rest

import (
	"net/http"
	"os"
	"runtime"

	"github.com/kailas-cloud/upsearch/internal/version"
)

// Telemetry header names.
const (
	HeaderTelemetrySDK      = "Upstash-Telemetry-Sdk"
	HeaderTelemetryRuntime  = "Upstash-Telemetry-Runtime"
	HeaderTelemetryPlatform = "Upstash-Telemetry-Platform"
)

// PlatformUnknown is reported when no hosting platform is detected.
const PlatformUnknown = "unknown"

// Headers builds the static header set sent with every request.
func Headers(token string, telemetry bool) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	h.Set("Content-Type", "application/json")

	if telemetry {
		h.Set(HeaderTelemetrySDK, version.SDK+"@v"+version.Version)
		h.Set(HeaderTelemetryRuntime, "go@"+runtime.Version())
		h.Set(HeaderTelemetryPlatform, detectPlatform(os.Getenv))
	}
	return h
}

func detectPlatform(getenv func(string) string) string {
	switch {
	case getenv("VERCEL") != "":
		return "vercel"
	case getenv("AWS_REGION") != "":
		return "aws"
	default:
		return PlatformUnknown
	}
}
