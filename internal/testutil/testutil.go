// Package testutil provides WAV assertions and skip helpers shared across
// test packages.
//
// The Require helpers call t.Skip with a clear reason when a named external
// prerequisite is absent, so integration tests stay runnable in partial
// environments without failing noisily.
package testutil

import (
	"os"
	"testing"
)

// RequireTTSEndpoint skips the test unless SCRIPTCAST_TTS_ENDPOINT points at
// a live speech-synthesis service, and returns the endpoint.
func RequireTTSEndpoint(tb testing.TB) string {
	tb.Helper()

	endpoint := os.Getenv("SCRIPTCAST_TTS_ENDPOINT")
	if endpoint == "" {
		tb.Skip("speech-synthesis service not available; set SCRIPTCAST_TTS_ENDPOINT to run")
	}

	return endpoint
}

// RequireScriptAPIKey skips the test unless SCRIPTCAST_SCRIPT_API_KEY is
// set, and returns the key.
func RequireScriptAPIKey(tb testing.TB) string {
	tb.Helper()

	key := os.Getenv("SCRIPTCAST_SCRIPT_API_KEY")
	if key == "" {
		tb.Skip("script service credentials not available; set SCRIPTCAST_SCRIPT_API_KEY to run")
	}

	return key
}
