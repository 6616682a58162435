package testutil

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// EmulatorEndpointEnvVar is the environment variable that points the
// emulator-backed tests at a running emulator.
const EmulatorEndpointEnvVar = "AWS_ENDPOINT_URL"

// SkipUnlessEmulator skips the test unless an emulator endpoint is
// configured in the environment. This keeps the unit test suite green on
// machines without an emulator running.
func SkipUnlessEmulator(t *testing.T) {
	if os.Getenv(EmulatorEndpointEnvVar) == "" {
		t.Skipf("skipping emulator-backed test because %s is not set", EmulatorEndpointEnvVar)
	}
}

// CheckEnvVars checks that the required environment variables are set.
func CheckEnvVars(t *testing.T, envVars ...string) {
	var missing []string

	for _, envVar := range envVars {
		if os.Getenv(envVar) == "" {
			missing = append(missing, envVar)
		}
	}

	if len(missing) > 0 {
		require.FailNow(t, fmt.Sprintf("missing required environment variables: %s", missing))
	}
}
