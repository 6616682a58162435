package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NotZero(t, c)
	assert.NoError(t, c.Validate())
	assert.Equal(t, DefaultEndpoint, c.Endpoint)
	assert.Equal(t, DefaultRegion, c.Region)
	assert.Equal(t, DefaultAccessKey, c.AccessKey)
	assert.Equal(t, DefaultSecretKey, c.SecretKey)
}

func TestConfigValidate(t *testing.T) {
	for tName, tCase := range map[string]func(t *testing.T, c *Config){
		"SucceedsWithDefaults": func(t *testing.T, c *Config) {
			assert.NoError(t, c.Validate())
		},
		"SucceedsWithRole": func(t *testing.T, c *Config) {
			c.Role = "arn:aws:iam::000000000000:role/verifier"
			assert.NoError(t, c.Validate())
		},
		"FailsWithoutEndpoint": func(t *testing.T, c *Config) {
			c.Endpoint = ""
			assert.Error(t, c.Validate())
		},
		"FailsWithNonHTTPEndpoint": func(t *testing.T, c *Config) {
			c.Endpoint = "localhost:4566"
			assert.Error(t, c.Validate())
		},
		"FailsWithoutRegion": func(t *testing.T, c *Config) {
			c.Region = ""
			assert.Error(t, c.Validate())
		},
		"FailsWithoutCredentials": func(t *testing.T, c *Config) {
			c.AccessKey = ""
			assert.Error(t, c.Validate())
		},
		"FailsWithNonpositiveProbeTimeout": func(t *testing.T, c *Config) {
			c.ProbeTimeout = 0
			assert.Error(t, c.Validate())
		},
		"FailsWithZeroMaxAttempts": func(t *testing.T, c *Config) {
			c.MaxAttempts = 0
			assert.Error(t, c.Validate())
		},
		"FailsWithoutBucket": func(t *testing.T, c *Config) {
			c.S3.Bucket = ""
			assert.Error(t, c.Validate())
		},
		"FailsWithoutTable": func(t *testing.T, c *Config) {
			c.DynamoDB.Table = ""
			assert.Error(t, c.Validate())
		},
		"FailsWithoutQueue": func(t *testing.T, c *Config) {
			c.SQS.Queue = ""
			assert.Error(t, c.Validate())
		},
		"FailsWithoutTopic": func(t *testing.T, c *Config) {
			c.SNS.Topic = ""
			assert.Error(t, c.Validate())
		},
		"FailsWhenSubscriberQueueCollidesWithQueue": func(t *testing.T, c *Config) {
			c.SNS.SubscriberQueue = c.SQS.Queue
			assert.Error(t, c.Validate())
		},
		"FailsWithoutFunction": func(t *testing.T, c *Config) {
			c.Lambda.Function = ""
			assert.Error(t, c.Validate())
		},
	} {
		t.Run(tName, func(t *testing.T) {
			tCase(t, Default())
		})
	}
}

func TestLoad(t *testing.T) {
	writeConfig := func(t *testing.T, content string) string {
		path := filepath.Join(t.TempDir(), "matcha.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))
		return path
	}

	t.Run("OverridesDefaults", func(t *testing.T) {
		path := writeConfig(t, `
endpoint: http://emulator:4566
region: eu-west-1
probe_timeout: 1m
s3:
  bucket: custom-bucket
`)
		c, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "http://emulator:4566", c.Endpoint)
		assert.Equal(t, "eu-west-1", c.Region)
		assert.Equal(t, time.Minute, c.ProbeTimeout)
		assert.Equal(t, "custom-bucket", c.S3.Bucket)

		// Unspecified settings keep their defaults.
		assert.Equal(t, DefaultAccessKey, c.AccessKey)
		assert.Equal(t, "MatchaVerify", c.DynamoDB.Table)
	})
	t.Run("FailsWithNonexistentFile", func(t *testing.T) {
		c, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
		assert.Error(t, err)
		assert.Zero(t, c)
	})
	t.Run("FailsWithMalformedYAML", func(t *testing.T) {
		path := writeConfig(t, "endpoint: [not closed")
		c, err := Load(path)
		assert.Error(t, err)
		assert.Zero(t, c)
	})
	t.Run("FailsWithInvalidSettings", func(t *testing.T) {
		path := writeConfig(t, "endpoint: \"\"")
		c, err := Load(path)
		assert.Error(t, err)
		assert.Zero(t, c)
	})
}
