package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/smithy-go"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/verdant-ci/matcha/awsutil"
)

// BasicDynamoDBClient provides a matcha.DynamoDBClient implementation
// that wraps the DynamoDB API. It supports retrying requests using
// exponential backoff and jitter.
type BasicDynamoDBClient struct {
	awsutil.BaseClient
	ddb *dynamodb.Client
}

// NewBasicDynamoDBClient creates a new DynamoDB API client from the given
// options.
func NewBasicDynamoDBClient(opts awsutil.ClientOptions) (*BasicDynamoDBClient, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}

	return &BasicDynamoDBClient{
		BaseClient: awsutil.NewBaseClient(opts),
	}, nil
}

func (c *BasicDynamoDBClient) setup(ctx context.Context) error {
	if c.ddb != nil {
		return nil
	}

	config, err := c.GetConfig(ctx)
	if err != nil {
		return errors.Wrap(err, "initializing config")
	}

	c.ddb = dynamodb.NewFromConfig(*config)

	return nil
}

// CreateTable creates a new table.
func (c *BasicDynamoDBClient) CreateTable(ctx context.Context, in *dynamodb.CreateTableInput) (*dynamodb.CreateTableOutput, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out *dynamodb.CreateTableOutput
	var err error
	msg := awsutil.MakeAPILogMessage("CreateTable", in)
	if err := utility.Retry(ctx,
		func() (bool, error) {
			out, err = c.ddb.CreateTable(ctx, in)
			var apiErr smithy.APIError
			if errors.As(err, &apiErr) {
				grip.Debug(message.WrapError(apiErr, msg))
				if c.isNonRetryableErrorCode(apiErr.ErrorCode()) {
					return false, err
				}
			}
			return true, err
		}, c.GetRetryOptions()); err != nil {
		return nil, err
	}

	return out, nil
}

// DescribeTable gets information about an existing table.
func (c *BasicDynamoDBClient) DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput) (*dynamodb.DescribeTableOutput, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out *dynamodb.DescribeTableOutput
	var err error
	msg := awsutil.MakeAPILogMessage("DescribeTable", in)
	if err := utility.Retry(ctx,
		func() (bool, error) {
			out, err = c.ddb.DescribeTable(ctx, in)
			var apiErr smithy.APIError
			if errors.As(err, &apiErr) {
				grip.Debug(message.WrapError(apiErr, msg))
				if c.isNonRetryableErrorCode(apiErr.ErrorCode()) {
					return false, err
				}
			}
			return true, err
		}, c.GetRetryOptions()); err != nil {
		return nil, err
	}

	return out, nil
}

// WaitForTableActive blocks until the table exists and is active, or the
// maximum wait time elapses.
func (c *BasicDynamoDBClient) WaitForTableActive(ctx context.Context, tableName string, maxWait time.Duration) error {
	if err := c.setup(ctx); err != nil {
		return errors.Wrap(err, "setting up client")
	}

	waiter := dynamodb.NewTableExistsWaiter(c.ddb)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: utility.ToStringPtr(tableName),
	}, maxWait); err != nil {
		return errors.Wrapf(err, "waiting for table '%s' to become active", tableName)
	}

	return nil
}

// PutItem writes an item into a table.
func (c *BasicDynamoDBClient) PutItem(ctx context.Context, in *dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out *dynamodb.PutItemOutput
	var err error
	msg := awsutil.MakeAPILogMessage("PutItem", in)
	if err := utility.Retry(ctx,
		func() (bool, error) {
			out, err = c.ddb.PutItem(ctx, in)
			var apiErr smithy.APIError
			if errors.As(err, &apiErr) {
				grip.Debug(message.WrapError(apiErr, msg))
				if c.isNonRetryableErrorCode(apiErr.ErrorCode()) {
					return false, err
				}
			}
			return true, err
		}, c.GetRetryOptions()); err != nil {
		return nil, err
	}

	return out, nil
}

// GetItem retrieves an item from a table by its key.
func (c *BasicDynamoDBClient) GetItem(ctx context.Context, in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out *dynamodb.GetItemOutput
	var err error
	msg := awsutil.MakeAPILogMessage("GetItem", in)
	if err := utility.Retry(ctx,
		func() (bool, error) {
			out, err = c.ddb.GetItem(ctx, in)
			var apiErr smithy.APIError
			if errors.As(err, &apiErr) {
				grip.Debug(message.WrapError(apiErr, msg))
				if c.isNonRetryableErrorCode(apiErr.ErrorCode()) {
					return false, err
				}
			}
			return true, err
		}, c.GetRetryOptions()); err != nil {
		return nil, err
	}

	return out, nil
}

// DeleteTable deletes an existing table.
func (c *BasicDynamoDBClient) DeleteTable(ctx context.Context, in *dynamodb.DeleteTableInput) (*dynamodb.DeleteTableOutput, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out *dynamodb.DeleteTableOutput
	var err error
	msg := awsutil.MakeAPILogMessage("DeleteTable", in)
	if err := utility.Retry(ctx,
		func() (bool, error) {
			out, err = c.ddb.DeleteTable(ctx, in)
			var apiErr smithy.APIError
			if errors.As(err, &apiErr) {
				grip.Debug(message.WrapError(apiErr, msg))
				if c.isNonRetryableErrorCode(apiErr.ErrorCode()) {
					return false, err
				}
			}
			return true, err
		}, c.GetRetryOptions()); err != nil {
		return nil, err
	}

	return out, nil
}

// Close cleans up all resources owned by the client.
func (c *BasicDynamoDBClient) Close(ctx context.Context) error {
	return c.BaseClient.Close(ctx)
}

func (c *BasicDynamoDBClient) isNonRetryableErrorCode(code string) bool {
	switch code {
	case "ResourceNotFoundException",
		"ResourceInUseException",
		"ValidationException",
		"ConditionalCheckFailedException":
		return true
	default:
		return false
	}
}
