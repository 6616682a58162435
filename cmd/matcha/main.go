// Package main implements the matcha command, which runs the full
// verification suite against an emulator endpoint and reports which
// service surfaces are healthy.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evergreen-ci/utility"
	"github.com/joho/godotenv"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/verdant-ci/matcha"
	"github.com/verdant-ci/matcha/awsutil"
	"github.com/verdant-ci/matcha/config"
	"github.com/verdant-ci/matcha/dynamodb"
	"github.com/verdant-ci/matcha/lambda"
	"github.com/verdant-ci/matcha/s3"
	"github.com/verdant-ci/matcha/sns"
	"github.com/verdant-ci/matcha/sqs"
	"github.com/verdant-ci/matcha/suite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("matcha", flag.ExitOnError)

	configPath := fs.String("config", "", "path to a YAML config file (defaults apply when omitted)")
	envFile := fs.String("env-file", "", "path to a dotenv file to load before running")
	endpoint := fs.String("endpoint", "", "emulator endpoint, overriding the config file")
	region := fs.String("region", "", "region, overriding the config file")
	probeTimeout := fs.Duration("probe-timeout", 0, "per-probe timeout, overriding the config file")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return errors.Wrap(err, "parsing flags")
	}

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			return errors.Wrapf(err, "loading env file '%s'", *envFile)
		}
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	if *endpoint != "" {
		cfg.Endpoint = *endpoint
	}
	if envEndpoint := os.Getenv("AWS_ENDPOINT_URL"); envEndpoint != "" && *endpoint == "" {
		cfg.Endpoint = envEndpoint
	}
	if *region != "" {
		cfg.Region = *region
	}
	if *probeTimeout > 0 {
		cfg.ProbeTimeout = *probeTimeout
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	report, err := runSuite(ctx, cfg)
	if err != nil {
		return err
	}

	printReport(report)

	if !report.Passed() {
		return errors.Errorf("%d of %d probes failed", len(report.Failures()), len(report.Results))
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	return cfg, errors.Wrap(err, "loading config")
}

func clientOptions(cfg *config.Config) awsutil.ClientOptions {
	opts := awsutil.NewClientOptions().
		SetStaticCredentials(cfg.AccessKey, cfg.SecretKey).
		SetRegion(cfg.Region).
		SetEndpoint(cfg.Endpoint).
		SetRetryOptions(utility.RetryOptions{MaxAttempts: cfg.MaxAttempts})
	if cfg.Role != "" {
		opts.SetRole(cfg.Role)
	}
	return *opts
}

func runSuite(ctx context.Context, cfg *config.Config) (*matcha.Report, error) {
	s3Client, err := s3.NewBasicS3Client(clientOptions(cfg))
	if err != nil {
		return nil, errors.Wrap(err, "creating object storage client")
	}
	defer closeClient(ctx, "s3", s3Client)

	ddbClient, err := dynamodb.NewBasicDynamoDBClient(clientOptions(cfg))
	if err != nil {
		return nil, errors.Wrap(err, "creating table client")
	}
	defer closeClient(ctx, "dynamodb", ddbClient)

	sqsClient, err := sqs.NewBasicSQSClient(clientOptions(cfg))
	if err != nil {
		return nil, errors.Wrap(err, "creating queue client")
	}
	defer closeClient(ctx, "sqs", sqsClient)

	snsClient, err := sns.NewBasicSNSClient(clientOptions(cfg))
	if err != nil {
		return nil, errors.Wrap(err, "creating topic client")
	}
	defer closeClient(ctx, "sns", snsClient)

	lambdaClient, err := lambda.NewBasicLambdaClient(clientOptions(cfg))
	if err != nil {
		return nil, errors.Wrap(err, "creating function client")
	}
	defer closeClient(ctx, "lambda", lambdaClient)

	roundTrip, err := s3.NewRoundTripProbe(s3Client, s3.RoundTripOptions{
		Bucket: cfg.S3.Bucket,
		Key:    cfg.S3.Key,
		Body:   []byte(cfg.S3.Body),
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating object storage probe")
	}

	table, err := dynamodb.NewTableProbe(ddbClient, dynamodb.TableOptions{
		Table: cfg.DynamoDB.Table,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating table probe")
	}

	queue, err := sqs.NewQueueProbe(sqsClient, sqs.QueueOptions{
		Queue: cfg.SQS.Queue,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating queue probe")
	}

	fanout, err := sns.NewFanoutProbe(snsClient, sqsClient, sns.FanoutOptions{
		Topic: cfg.SNS.Topic,
		Queue: cfg.SNS.SubscriberQueue,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating fan-out probe")
	}

	registration, err := lambda.NewRegistrationProbe(lambdaClient, lambda.RegistrationOptions{
		Function: cfg.Lambda.Function,
		Region:   cfg.Region,
		Bucket:   cfg.S3.Bucket,
		Key:      cfg.S3.Key,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating registration probe")
	}

	s, err := suite.New(suite.Options{ProbeTimeout: cfg.ProbeTimeout},
		roundTrip, table, queue, fanout, registration)
	if err != nil {
		return nil, errors.Wrap(err, "creating suite")
	}

	return s.Run(ctx), nil
}

func closeClient(ctx context.Context, name string, c interface {
	Close(ctx context.Context) error
}) {
	grip.Error(message.WrapError(c.Close(ctx), message.Fields{
		"message": "closing client",
		"client":  name,
	}))
}

func printReport(report *matcha.Report) {
	var totalRuntime time.Duration
	for _, res := range report.Results {
		totalRuntime += res.Runtime

		status := "PASS"
		if !res.Passed {
			status = "FAIL"
		}
		fmt.Printf("%s  %-28s %s\n", status, res.Name, res.Runtime.Round(time.Millisecond))
		if res.Err != nil {
			fmt.Printf("      %v\n", res.Err)
		}
	}
	fmt.Printf("%d probes, %d failures (%s)\n", len(report.Results), len(report.Failures()), totalRuntime.Round(time.Millisecond))
}
