package s3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/verdant-ci/matcha/awsutil"
)

// BasicS3Client provides a matcha.S3Client implementation that wraps the
// S3 API. It supports retrying requests using exponential backoff and
// jitter.
type BasicS3Client struct {
	awsutil.BaseClient
	s3 *s3.Client
}

// NewBasicS3Client creates a new S3 API client from the given options.
// The client uses path-style bucket addressing, which emulator endpoints
// require.
func NewBasicS3Client(opts awsutil.ClientOptions) (*BasicS3Client, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}

	return &BasicS3Client{
		BaseClient: awsutil.NewBaseClient(opts),
	}, nil
}

func (c *BasicS3Client) setup(ctx context.Context) error {
	if c.s3 != nil {
		return nil
	}

	config, err := c.GetConfig(ctx)
	if err != nil {
		return errors.Wrap(err, "initializing config")
	}

	c.s3 = s3.NewFromConfig(*config, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return nil
}

// CreateBucket creates a new bucket.
func (c *BasicS3Client) CreateBucket(ctx context.Context, in *s3.CreateBucketInput) (*s3.CreateBucketOutput, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out *s3.CreateBucketOutput
	var err error
	msg := awsutil.MakeAPILogMessage("CreateBucket", in)
	if err := utility.Retry(ctx,
		func() (bool, error) {
			out, err = c.s3.CreateBucket(ctx, in)
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

// PutObject writes an object into a bucket.
func (c *BasicS3Client) PutObject(ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out *s3.PutObjectOutput
	var err error
	msg := awsutil.MakeAPILogMessage("PutObject", in)
	if err := utility.Retry(ctx,
		func() (bool, error) {
			out, err = c.s3.PutObject(ctx, in)
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

// GetObject retrieves an object from a bucket. Object retrieval is not
// retried because the response body can only be consumed once.
func (c *BasicS3Client) GetObject(ctx context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	msg := awsutil.MakeAPILogMessage("GetObject", in)
	out, err := c.s3.GetObject(ctx, in)
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		grip.Debug(message.WrapError(apiErr, msg))
	}
	if err != nil {
		return nil, err
	}

	return out, nil
}

// DeleteObject deletes an object from a bucket.
func (c *BasicS3Client) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out *s3.DeleteObjectOutput
	var err error
	msg := awsutil.MakeAPILogMessage("DeleteObject", in)
	if err := utility.Retry(ctx,
		func() (bool, error) {
			out, err = c.s3.DeleteObject(ctx, in)
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

// DeleteBucket deletes an existing empty bucket.
func (c *BasicS3Client) DeleteBucket(ctx context.Context, in *s3.DeleteBucketInput) (*s3.DeleteBucketOutput, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out *s3.DeleteBucketOutput
	var err error
	msg := awsutil.MakeAPILogMessage("DeleteBucket", in)
	if err := utility.Retry(ctx,
		func() (bool, error) {
			out, err = c.s3.DeleteBucket(ctx, in)
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
func (c *BasicS3Client) Close(ctx context.Context) error {
	return c.BaseClient.Close(ctx)
}

func (c *BasicS3Client) isNonRetryableErrorCode(code string) bool {
	switch code {
	case "InvalidBucketName",
		"NoSuchBucket",
		"NoSuchKey",
		"BucketAlreadyExists",
		"BucketAlreadyOwnedByYou",
		"BucketNotEmpty",
		"AccessDenied":
		return true
	default:
		return false
	}
}
