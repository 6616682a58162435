// Package config defines the file-based configuration for running a full
// verification suite against an emulator endpoint.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Default connection settings match the stock LocalStack setup, which
// listens on port 4566 and accepts any credentials.
const (
	DefaultEndpoint  = "http://localhost:4566"
	DefaultRegion    = "us-east-1"
	DefaultAccessKey = "test"
	DefaultSecretKey = "test"
)

// Config holds every setting needed to run the verification suite:
// where the emulator is, how to authenticate, how patient to be, and what
// to name the resources each probe creates.
type Config struct {
	// Endpoint is the base URL of the emulator.
	Endpoint string `yaml:"endpoint"`
	// Region is the geographical region sent with API calls.
	Region string `yaml:"region"`
	// AccessKey and SecretKey are the static credentials sent with API
	// calls. Emulators accept any non-empty pair.
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	// Role is an optional STS role to assume before making API calls.
	Role string `yaml:"role,omitempty"`

	// ProbeTimeout bounds how long each probe may run.
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
	// MaxAttempts bounds how many times each API call is retried.
	MaxAttempts int `yaml:"max_attempts"`

	S3       S3Config       `yaml:"s3"`
	DynamoDB DynamoDBConfig `yaml:"dynamodb"`
	SQS      SQSConfig      `yaml:"sqs"`
	SNS      SNSConfig      `yaml:"sns"`
	Lambda   LambdaConfig   `yaml:"lambda"`
}

// S3Config names the resources used by the object storage probe.
type S3Config struct {
	Bucket string `yaml:"bucket"`
	Key    string `yaml:"key"`
	Body   string `yaml:"body"`
}

// DynamoDBConfig names the resources used by the table probe.
type DynamoDBConfig struct {
	Table string `yaml:"table"`
}

// SQSConfig names the resources used by the queue probe.
type SQSConfig struct {
	Queue string `yaml:"queue"`
}

// SNSConfig names the resources used by the fan-out probe.
type SNSConfig struct {
	Topic           string `yaml:"topic"`
	SubscriberQueue string `yaml:"subscriber_queue"`
}

// LambdaConfig names the resources used by the registration probe.
type LambdaConfig struct {
	Function string `yaml:"function"`
}

// Default returns the configuration for verifying a stock local emulator.
func Default() *Config {
	return &Config{
		Endpoint:     DefaultEndpoint,
		Region:       DefaultRegion,
		AccessKey:    DefaultAccessKey,
		SecretKey:    DefaultSecretKey,
		ProbeTimeout: 30 * time.Second,
		MaxAttempts:  5,
		S3: S3Config{
			Bucket: "matcha-verify",
			Key:    "round-trip.txt",
			Body:   "hello from matcha",
		},
		DynamoDB: DynamoDBConfig{
			Table: "MatchaVerify",
		},
		SQS: SQSConfig{
			Queue: "matcha-verify",
		},
		SNS: SNSConfig{
			Topic:           "matcha-verify",
			SubscriberQueue: "matcha-verify-subscriber",
		},
		Lambda: LambdaConfig{
			Function: "matcha-verify-fn",
		},
	}
}

// Load reads the configuration from a YAML file, filling in defaults for
// any unspecified settings.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config file '%s'", path)
	}

	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrapf(err, "parsing config file '%s'", path)
	}

	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return c, nil
}

// Validate checks that the settings are complete and consistent.
func (c *Config) Validate() error {
	catcher := grip.NewBasicCatcher()
	catcher.NewWhen(c.Endpoint == "", "must provide the emulator endpoint")
	catcher.NewWhen(!strings.HasPrefix(c.Endpoint, "http://") && !strings.HasPrefix(c.Endpoint, "https://"), "emulator endpoint must be an HTTP(S) URL")
	catcher.NewWhen(c.Region == "", "must provide a region")
	catcher.NewWhen(c.AccessKey == "" || c.SecretKey == "", "must provide static credentials")
	catcher.NewWhen(c.ProbeTimeout <= 0, "probe timeout must be positive")
	catcher.NewWhen(c.MaxAttempts < 1, "max attempts must be at least 1")
	catcher.NewWhen(c.S3.Bucket == "", "must provide the object storage bucket name")
	catcher.NewWhen(c.DynamoDB.Table == "", "must provide the table name")
	catcher.NewWhen(c.SQS.Queue == "", "must provide the queue name")
	catcher.NewWhen(c.SNS.Topic == "", "must provide the topic name")
	catcher.NewWhen(c.SNS.SubscriberQueue == "", "must provide the subscriber queue name")
	catcher.NewWhen(c.SNS.SubscriberQueue == c.SQS.Queue, "subscriber queue must not collide with the queue probe's queue")
	catcher.NewWhen(c.Lambda.Function == "", "must provide the function name")

	return catcher.Resolve()
}
