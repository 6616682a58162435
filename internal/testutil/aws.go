package testutil

import (
	"os"
	"strings"
	"testing"

	"github.com/evergreen-ci/utility"
	"github.com/verdant-ci/matcha/awsutil"
)

// runtimeNamespace is a random string generated during testing runtime
// that acts as a namespace for this particular runtime's tests. It is
// used to namespace emulator resources (e.g. buckets, tables, queues).
// This avoids an issue where tests running concurrently against a shared
// emulator may interfere with each other due to the way resources are
// cleaned up at the end of tests.
var runtimeNamespace = strings.ToLower(utility.RandomString())

// EmulatorEndpoint returns the emulator endpoint from the environment
// variable, defaulting to the stock local emulator endpoint.
func EmulatorEndpoint() string {
	if endpoint := os.Getenv(EmulatorEndpointEnvVar); endpoint != "" {
		return endpoint
	}
	return "http://localhost:4566"
}

// EmulatorRegion returns the region to use for emulator tests from the
// environment variable, defaulting to us-east-1.
func EmulatorRegion() string {
	if region := os.Getenv("AWS_REGION"); region != "" {
		return region
	}
	return "us-east-1"
}

// EmulatorClientOptions returns valid options to create a client that
// makes requests against the emulator for integration testing. Emulators
// accept any static credentials.
func EmulatorClientOptions() awsutil.ClientOptions {
	return *awsutil.NewClientOptions().
		SetStaticCredentials("test", "test").
		SetRegion(EmulatorRegion()).
		SetEndpoint(EmulatorEndpoint())
}

// ValidNonIntegrationOptions returns valid options to create a client
// that doesn't make any actual requests.
func ValidNonIntegrationOptions() awsutil.ClientOptions {
	return *awsutil.NewClientOptions().
		SetStaticCredentials("test", "test").
		SetRegion("us-east-1")
}

// NewResourceName returns a name for an emulator resource that is unique
// to both the test and this test runtime, and conforms to bucket naming
// restrictions (lowercase, no slashes).
func NewResourceName(t *testing.T) string {
	name := strings.ToLower(t.Name())
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ReplaceAll(name, "_", "-")
	return strings.Join([]string{"matcha", name, runtimeNamespace}, "-")
}
