package awsutil

import (
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/evergreen-ci/utility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientOptions(t *testing.T) {
	t.Run("SetCredentialsProvider", func(t *testing.T) {
		creds := credentials.NewStaticCredentialsProvider("test", "test", "")
		opts := NewClientOptions().SetCredentialsProvider(creds)
		require.NotNil(t, opts.CredsProvider)
		assert.Equal(t, creds, *opts.CredsProvider)
	})
	t.Run("SetStaticCredentials", func(t *testing.T) {
		opts := NewClientOptions().SetStaticCredentials("test", "test")
		assert.NotNil(t, opts.CredsProvider)
	})
	t.Run("SetRole", func(t *testing.T) {
		role := "role"
		opts := NewClientOptions().SetRole(role)
		require.NotNil(t, opts.Role)
		assert.Equal(t, role, *opts.Role)
	})
	t.Run("SetRegion", func(t *testing.T) {
		region := "region"
		opts := NewClientOptions().SetRegion(region)
		require.NotNil(t, opts.Region)
		assert.Equal(t, region, *opts.Region)
	})
	t.Run("SetEndpoint", func(t *testing.T) {
		endpoint := "http://localhost:4566"
		opts := NewClientOptions().SetEndpoint(endpoint)
		require.NotNil(t, opts.Endpoint)
		assert.Equal(t, endpoint, *opts.Endpoint)
	})
	t.Run("SetRetryOptions", func(t *testing.T) {
		retryOpts := utility.RetryOptions{
			MaxAttempts: 10,
			MinDelay:    100 * time.Millisecond,
			MaxDelay:    time.Second,
		}
		opts := NewClientOptions().SetRetryOptions(retryOpts)
		require.NotNil(t, opts.RetryOpts)
		assert.Equal(t, retryOpts, *opts.RetryOpts)
	})
	t.Run("SetHTTPClient", func(t *testing.T) {
		hc := http.DefaultClient
		opts := NewClientOptions().SetHTTPClient(hc)
		require.NotNil(t, opts.HTTPClient)
		assert.Equal(t, hc, opts.HTTPClient)
		assert.False(t, opts.ownsHTTPClient)
	})
	t.Run("Validate", func(t *testing.T) {
		t.Run("SucceedsWithAllOptionsSet", func(t *testing.T) {
			creds := credentials.NewStaticCredentialsProvider("test", "test", "")
			role := "role"
			region := "region"
			endpoint := "http://localhost:4566"
			retryOpts := utility.RetryOptions{
				MaxAttempts: 10,
				MinDelay:    100 * time.Millisecond,
				MaxDelay:    time.Second,
			}
			hc := http.DefaultClient
			opts := NewClientOptions().
				SetCredentialsProvider(creds).
				SetRole(role).
				SetRegion(region).
				SetEndpoint(endpoint).
				SetRetryOptions(retryOpts).
				SetHTTPClient(hc)

			require.NoError(t, opts.Validate())

			assert.Equal(t, region, *opts.Region)
			assert.Equal(t, role, *opts.Role)
			assert.Equal(t, endpoint, *opts.Endpoint)
			assert.Equal(t, retryOpts, *opts.RetryOpts)
			assert.Equal(t, hc, opts.HTTPClient)
			assert.False(t, opts.ownsHTTPClient)
		})
		t.Run("SucceedsWithoutCredentialsWhenRoleIsGiven", func(t *testing.T) {
			opts := NewClientOptions().
				SetRole("role").
				SetRegion("region").
				SetHTTPClient(http.DefaultClient)

			assert.NoError(t, opts.Validate())
		})
		t.Run("SucceedsWithoutRoleWhenCredentialsAreGiven", func(t *testing.T) {
			opts := NewClientOptions().
				SetStaticCredentials("test", "test").
				SetRegion("region").
				SetHTTPClient(http.DefaultClient)

			assert.NoError(t, opts.Validate())
		})
		t.Run("SucceedsWithoutEndpoint", func(t *testing.T) {
			opts := NewClientOptions().
				SetStaticCredentials("test", "test").
				SetRegion("region").
				SetHTTPClient(http.DefaultClient)

			assert.NoError(t, opts.Validate())
			assert.Nil(t, opts.Endpoint)
		})
		t.Run("FailsWhenNeitherCredentialsNorRoleAreGiven", func(t *testing.T) {
			opts := NewClientOptions().
				SetRegion("region").
				SetHTTPClient(http.DefaultClient)

			assert.Error(t, opts.Validate())
		})
		t.Run("FailsWithoutRegion", func(t *testing.T) {
			opts := NewClientOptions().
				SetStaticCredentials("test", "test").
				SetRole("role").
				SetHTTPClient(http.DefaultClient)

			assert.Error(t, opts.Validate())
		})
		t.Run("DefaultsHTTPClient", func(t *testing.T) {
			opts := NewClientOptions().
				SetStaticCredentials("test", "test").
				SetRole("role").
				SetRegion("region")

			require.NoError(t, opts.Validate())
			defer opts.Close()

			assert.NotZero(t, opts.HTTPClient)
			assert.True(t, opts.ownsHTTPClient)
		})
	})
}
