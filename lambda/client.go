package lambda

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/smithy-go"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/verdant-ci/matcha"
	"github.com/verdant-ci/matcha/awsutil"
)

// BasicLambdaClient provides a matcha.LambdaClient implementation that
// wraps the Lambda API. It supports retrying requests using exponential
// backoff and jitter.
type BasicLambdaClient struct {
	awsutil.BaseClient
	lambda *lambda.Client
}

// NewBasicLambdaClient creates a new Lambda API client from the given
// options.
func NewBasicLambdaClient(opts awsutil.ClientOptions) (*BasicLambdaClient, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}

	return &BasicLambdaClient{
		BaseClient: awsutil.NewBaseClient(opts),
	}, nil
}

func (c *BasicLambdaClient) setup(ctx context.Context) error {
	if c.lambda != nil {
		return nil
	}

	config, err := c.GetConfig(ctx)
	if err != nil {
		return errors.Wrap(err, "initializing config")
	}

	c.lambda = lambda.NewFromConfig(*config)

	return nil
}

// CreateFunction registers a new function. Registering a name that is
// already taken returns a matcha.FunctionConflictError.
func (c *BasicLambdaClient) CreateFunction(ctx context.Context, in *lambda.CreateFunctionInput) (*lambda.CreateFunctionOutput, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out *lambda.CreateFunctionOutput
	var err error
	msg := awsutil.MakeAPILogMessage("CreateFunction", in)
	if err := utility.Retry(ctx,
		func() (bool, error) {
			out, err = c.lambda.CreateFunction(ctx, in)
			var apiErr smithy.APIError
			if errors.As(err, &apiErr) {
				grip.Debug(message.WrapError(apiErr, msg))
				if c.isNonRetryableErrorCode(apiErr.ErrorCode()) {
					return false, err
				}
			}
			return true, err
		}, c.GetRetryOptions()); err != nil {
		var conflictErr *types.ResourceConflictException
		if errors.As(err, &conflictErr) {
			return nil, matcha.NewFunctionConflictError(utility.FromStringPtr(in.FunctionName))
		}
		return nil, err
	}

	return out, nil
}

// GetFunction gets information about an existing function.
func (c *BasicLambdaClient) GetFunction(ctx context.Context, in *lambda.GetFunctionInput) (*lambda.GetFunctionOutput, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out *lambda.GetFunctionOutput
	var err error
	msg := awsutil.MakeAPILogMessage("GetFunction", in)
	if err := utility.Retry(ctx,
		func() (bool, error) {
			out, err = c.lambda.GetFunction(ctx, in)
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

// Invoke invokes an existing function with the given payload. Invocation
// is not retried because the function may not be idempotent.
func (c *BasicLambdaClient) Invoke(ctx context.Context, in *lambda.InvokeInput) (*lambda.InvokeOutput, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	msg := awsutil.MakeAPILogMessage("Invoke", in)
	out, err := c.lambda.Invoke(ctx, in)
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		grip.Debug(message.WrapError(apiErr, msg))
	}
	if err != nil {
		return nil, err
	}

	return out, nil
}

// DeleteFunction deletes an existing function.
func (c *BasicLambdaClient) DeleteFunction(ctx context.Context, in *lambda.DeleteFunctionInput) (*lambda.DeleteFunctionOutput, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out *lambda.DeleteFunctionOutput
	var err error
	msg := awsutil.MakeAPILogMessage("DeleteFunction", in)
	if err := utility.Retry(ctx,
		func() (bool, error) {
			out, err = c.lambda.DeleteFunction(ctx, in)
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
func (c *BasicLambdaClient) Close(ctx context.Context) error {
	return c.BaseClient.Close(ctx)
}

func (c *BasicLambdaClient) isNonRetryableErrorCode(code string) bool {
	switch code {
	case "ResourceConflictException",
		"ResourceNotFoundException",
		"InvalidParameterValueException",
		"ValidationException":
		return true
	default:
		return false
	}
}
