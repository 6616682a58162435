package testcase

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/evergreen-ci/utility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdant-ci/matcha"
	"github.com/verdant-ci/matcha/internal/testutil"
)

// S3ClientTestCase represents a test case for a matcha.S3Client.
type S3ClientTestCase func(ctx context.Context, t *testing.T, c matcha.S3Client)

// S3ClientTests returns common test cases that a matcha.S3Client should
// support.
func S3ClientTests() map[string]S3ClientTestCase {
	return map[string]S3ClientTestCase{
		"CreateBucketSucceeds": func(ctx context.Context, t *testing.T, c matcha.S3Client) {
			bucket := testutil.NewResourceName(t)
			out, err := c.CreateBucket(ctx, &s3.CreateBucketInput{
				Bucket: utility.ToStringPtr(bucket),
			})
			require.NoError(t, err)
			require.NotZero(t, out)

			cleanupBucket(ctx, t, c, bucket)
		},
		"CreateBucketFailsWithInvalidInput": func(ctx context.Context, t *testing.T, c matcha.S3Client) {
			out, err := c.CreateBucket(ctx, &s3.CreateBucketInput{})
			assert.Error(t, err)
			assert.Zero(t, out)
		},
		"PutAndGetObjectRoundTrips": func(ctx context.Context, t *testing.T, c matcha.S3Client) {
			bucket := testutil.NewResourceName(t)
			_, err := c.CreateBucket(ctx, &s3.CreateBucketInput{
				Bucket: utility.ToStringPtr(bucket),
			})
			require.NoError(t, err)

			defer cleanupBucket(ctx, t, c, bucket)

			body := []byte("hello from matcha")
			_, err = c.PutObject(ctx, &s3.PutObjectInput{
				Bucket: utility.ToStringPtr(bucket),
				Key:    utility.ToStringPtr("round-trip.txt"),
				Body:   bytes.NewReader(body),
			})
			require.NoError(t, err)

			defer cleanupObject(ctx, t, c, bucket, "round-trip.txt")

			out, err := c.GetObject(ctx, &s3.GetObjectInput{
				Bucket: utility.ToStringPtr(bucket),
				Key:    utility.ToStringPtr("round-trip.txt"),
			})
			require.NoError(t, err)
			require.NotZero(t, out)

			defer out.Body.Close()

			read, err := io.ReadAll(out.Body)
			require.NoError(t, err)
			assert.Equal(t, body, read)
		},
		"GetObjectFailsWithNonexistentKey": func(ctx context.Context, t *testing.T, c matcha.S3Client) {
			bucket := testutil.NewResourceName(t)
			_, err := c.CreateBucket(ctx, &s3.CreateBucketInput{
				Bucket: utility.ToStringPtr(bucket),
			})
			require.NoError(t, err)

			defer cleanupBucket(ctx, t, c, bucket)

			out, err := c.GetObject(ctx, &s3.GetObjectInput{
				Bucket: utility.ToStringPtr(bucket),
				Key:    utility.ToStringPtr("nonexistent.txt"),
			})
			assert.Error(t, err)
			assert.Zero(t, out)
		},
		"GetObjectFailsWithNonexistentBucket": func(ctx context.Context, t *testing.T, c matcha.S3Client) {
			out, err := c.GetObject(ctx, &s3.GetObjectInput{
				Bucket: utility.ToStringPtr(testutil.NewResourceName(t)),
				Key:    utility.ToStringPtr("nonexistent.txt"),
			})
			assert.Error(t, err)
			assert.Zero(t, out)
		},
		"DeleteObjectRemovesObject": func(ctx context.Context, t *testing.T, c matcha.S3Client) {
			bucket := testutil.NewResourceName(t)
			_, err := c.CreateBucket(ctx, &s3.CreateBucketInput{
				Bucket: utility.ToStringPtr(bucket),
			})
			require.NoError(t, err)

			defer cleanupBucket(ctx, t, c, bucket)

			_, err = c.PutObject(ctx, &s3.PutObjectInput{
				Bucket: utility.ToStringPtr(bucket),
				Key:    utility.ToStringPtr("doomed.txt"),
				Body:   bytes.NewReader([]byte("doomed")),
			})
			require.NoError(t, err)

			_, err = c.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: utility.ToStringPtr(bucket),
				Key:    utility.ToStringPtr("doomed.txt"),
			})
			require.NoError(t, err)

			out, err := c.GetObject(ctx, &s3.GetObjectInput{
				Bucket: utility.ToStringPtr(bucket),
				Key:    utility.ToStringPtr("doomed.txt"),
			})
			assert.Error(t, err)
			assert.Zero(t, out)
		},
	}
}

func cleanupBucket(ctx context.Context, t *testing.T, c matcha.S3Client, bucket string) {
	_, err := c.DeleteBucket(ctx, &s3.DeleteBucketInput{
		Bucket: utility.ToStringPtr(bucket),
	})
	assert.NoError(t, err)
}

func cleanupObject(ctx context.Context, t *testing.T, c matcha.S3Client, bucket, key string) {
	_, err := c.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: utility.ToStringPtr(bucket),
		Key:    utility.ToStringPtr(key),
	})
	assert.NoError(t, err)
}
