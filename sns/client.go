package sns

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/smithy-go"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/verdant-ci/matcha/awsutil"
)

// BasicSNSClient provides a matcha.SNSClient implementation that wraps
// the SNS API. It supports retrying requests using exponential backoff
// and jitter.
type BasicSNSClient struct {
	awsutil.BaseClient
	sns *sns.Client
}

// NewBasicSNSClient creates a new SNS API client from the given options.
func NewBasicSNSClient(opts awsutil.ClientOptions) (*BasicSNSClient, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}

	return &BasicSNSClient{
		BaseClient: awsutil.NewBaseClient(opts),
	}, nil
}

func (c *BasicSNSClient) setup(ctx context.Context) error {
	if c.sns != nil {
		return nil
	}

	config, err := c.GetConfig(ctx)
	if err != nil {
		return errors.Wrap(err, "initializing config")
	}

	c.sns = sns.NewFromConfig(*config)

	return nil
}

// CreateTopic creates a new topic and returns its ARN.
func (c *BasicSNSClient) CreateTopic(ctx context.Context, in *sns.CreateTopicInput) (*sns.CreateTopicOutput, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out *sns.CreateTopicOutput
	var err error
	msg := awsutil.MakeAPILogMessage("CreateTopic", in)
	if err := utility.Retry(ctx,
		func() (bool, error) {
			out, err = c.sns.CreateTopic(ctx, in)
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

// Subscribe subscribes an endpoint to a topic.
func (c *BasicSNSClient) Subscribe(ctx context.Context, in *sns.SubscribeInput) (*sns.SubscribeOutput, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out *sns.SubscribeOutput
	var err error
	msg := awsutil.MakeAPILogMessage("Subscribe", in)
	if err := utility.Retry(ctx,
		func() (bool, error) {
			out, err = c.sns.Subscribe(ctx, in)
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

// Publish publishes a message to all of a topic's subscribers.
func (c *BasicSNSClient) Publish(ctx context.Context, in *sns.PublishInput) (*sns.PublishOutput, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out *sns.PublishOutput
	var err error
	msg := awsutil.MakeAPILogMessage("Publish", in)
	if err := utility.Retry(ctx,
		func() (bool, error) {
			out, err = c.sns.Publish(ctx, in)
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

// Unsubscribe removes an existing subscription from a topic.
func (c *BasicSNSClient) Unsubscribe(ctx context.Context, in *sns.UnsubscribeInput) (*sns.UnsubscribeOutput, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out *sns.UnsubscribeOutput
	var err error
	msg := awsutil.MakeAPILogMessage("Unsubscribe", in)
	if err := utility.Retry(ctx,
		func() (bool, error) {
			out, err = c.sns.Unsubscribe(ctx, in)
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

// DeleteTopic deletes an existing topic.
func (c *BasicSNSClient) DeleteTopic(ctx context.Context, in *sns.DeleteTopicInput) (*sns.DeleteTopicOutput, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out *sns.DeleteTopicOutput
	var err error
	msg := awsutil.MakeAPILogMessage("DeleteTopic", in)
	if err := utility.Retry(ctx,
		func() (bool, error) {
			out, err = c.sns.DeleteTopic(ctx, in)
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
func (c *BasicSNSClient) Close(ctx context.Context) error {
	return c.BaseClient.Close(ctx)
}

func (c *BasicSNSClient) isNonRetryableErrorCode(code string) bool {
	switch code {
	case "NotFound",
		"NotFoundException",
		"InvalidParameter",
		"InvalidParameterValue",
		"AuthorizationError":
		return true
	default:
		return false
	}
}
