package sqs

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/smithy-go"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/verdant-ci/matcha/awsutil"
)

// BasicSQSClient provides a matcha.SQSClient implementation that wraps
// the SQS API. It supports retrying requests using exponential backoff
// and jitter.
type BasicSQSClient struct {
	awsutil.BaseClient
	sqs *sqs.Client
}

// NewBasicSQSClient creates a new SQS API client from the given options.
func NewBasicSQSClient(opts awsutil.ClientOptions) (*BasicSQSClient, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}

	return &BasicSQSClient{
		BaseClient: awsutil.NewBaseClient(opts),
	}, nil
}

func (c *BasicSQSClient) setup(ctx context.Context) error {
	if c.sqs != nil {
		return nil
	}

	config, err := c.GetConfig(ctx)
	if err != nil {
		return errors.Wrap(err, "initializing config")
	}

	c.sqs = sqs.NewFromConfig(*config)

	return nil
}

// CreateQueue creates a new queue and returns its URL.
func (c *BasicSQSClient) CreateQueue(ctx context.Context, in *sqs.CreateQueueInput) (*sqs.CreateQueueOutput, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out *sqs.CreateQueueOutput
	var err error
	msg := awsutil.MakeAPILogMessage("CreateQueue", in)
	if err := utility.Retry(ctx,
		func() (bool, error) {
			out, err = c.sqs.CreateQueue(ctx, in)
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

// GetQueueAttributes gets attributes of an existing queue.
func (c *BasicSQSClient) GetQueueAttributes(ctx context.Context, in *sqs.GetQueueAttributesInput) (*sqs.GetQueueAttributesOutput, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out *sqs.GetQueueAttributesOutput
	var err error
	msg := awsutil.MakeAPILogMessage("GetQueueAttributes", in)
	if err := utility.Retry(ctx,
		func() (bool, error) {
			out, err = c.sqs.GetQueueAttributes(ctx, in)
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

// SendMessage sends a message to a queue.
func (c *BasicSQSClient) SendMessage(ctx context.Context, in *sqs.SendMessageInput) (*sqs.SendMessageOutput, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out *sqs.SendMessageOutput
	var err error
	msg := awsutil.MakeAPILogMessage("SendMessage", in)
	if err := utility.Retry(ctx,
		func() (bool, error) {
			out, err = c.sqs.SendMessage(ctx, in)
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

// ReceiveMessage receives available messages from a queue. Receiving is
// not retried because an empty receive is a valid response, not a
// failure.
func (c *BasicSQSClient) ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	msg := awsutil.MakeAPILogMessage("ReceiveMessage", in)
	out, err := c.sqs.ReceiveMessage(ctx, in)
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		grip.Debug(message.WrapError(apiErr, msg))
	}
	if err != nil {
		return nil, err
	}

	return out, nil
}

// DeleteMessage deletes a previously-received message from a queue.
func (c *BasicSQSClient) DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out *sqs.DeleteMessageOutput
	var err error
	msg := awsutil.MakeAPILogMessage("DeleteMessage", in)
	if err := utility.Retry(ctx,
		func() (bool, error) {
			out, err = c.sqs.DeleteMessage(ctx, in)
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

// DeleteQueue deletes an existing queue.
func (c *BasicSQSClient) DeleteQueue(ctx context.Context, in *sqs.DeleteQueueInput) (*sqs.DeleteQueueOutput, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out *sqs.DeleteQueueOutput
	var err error
	msg := awsutil.MakeAPILogMessage("DeleteQueue", in)
	if err := utility.Retry(ctx,
		func() (bool, error) {
			out, err = c.sqs.DeleteQueue(ctx, in)
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
func (c *BasicSQSClient) Close(ctx context.Context) error {
	return c.BaseClient.Close(ctx)
}

func (c *BasicSQSClient) isNonRetryableErrorCode(code string) bool {
	switch code {
	case "QueueDoesNotExist",
		"AWS.SimpleQueueService.NonExistentQueue",
		"QueueDeletedRecently",
		"InvalidAttributeName",
		"ReceiptHandleIsInvalid",
		"InvalidParameterValue":
		return true
	default:
		return false
	}
}
