package matcha

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Client provides a common interface to interact with an S3-compatible
// object storage endpoint and its mock implementation for testing.
// Implementations must handle retrying and backoff.
type S3Client interface {
	// CreateBucket creates a new bucket. Creating a bucket that already
	// exists and is owned by the caller is not an error.
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput) (*s3.CreateBucketOutput, error)
	// PutObject writes an object into a bucket.
	PutObject(ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error)
	// GetObject retrieves an object from a bucket.
	GetObject(ctx context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error)
	// DeleteObject deletes an object from a bucket.
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error)
	// DeleteBucket deletes an existing empty bucket.
	DeleteBucket(ctx context.Context, in *s3.DeleteBucketInput) (*s3.DeleteBucketOutput, error)
	// Close closes the client and cleans up its resources. Implementations
	// should ensure that this is idempotent.
	Close(ctx context.Context) error
}
