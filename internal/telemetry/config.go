package telemetry

import (
	"os"
)

// DefaultArtifactsDir is where events.jsonl lands when AGT_ARTIFACTS_DIR is unset.
const DefaultArtifactsDir = ".agent"

var observeEnabled bool

func init() {
	// Read once at process start. Mid-run environment changes have no effect
	// except the explicit test override in ObserveEnabled.
	observeEnabled = os.Getenv("AGT_OBSERVE_JSON") == "1"
}

// ObserveEnabled reports whether JSONL emission is on.
func ObserveEnabled() bool {
	if v, ok := os.LookupEnv("AGT_OBSERVE_JSON"); ok {
		return v == "1"
	}
	return observeEnabled
}

// ArtifactsDir returns the directory events are appended under.
func ArtifactsDir() string {
	if d := os.Getenv("AGT_ARTIFACTS_DIR"); d != "" {
		return d
	}
	return DefaultArtifactsDir
}
