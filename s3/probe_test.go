package s3

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/evergreen-ci/utility"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdant-ci/matcha"
	"github.com/verdant-ci/matcha/mock"
)

func TestRoundTripOptions(t *testing.T) {
	t.Run("FailsWithoutBucket", func(t *testing.T) {
		opts := RoundTripOptions{}
		assert.Error(t, opts.Validate())
	})
	t.Run("SetsDefaults", func(t *testing.T) {
		opts := RoundTripOptions{Bucket: "bucket"}
		require.NoError(t, opts.Validate())
		assert.Equal(t, "round-trip.txt", opts.Key)
		assert.NotEmpty(t, opts.Body)
	})
	t.Run("KeepsGivenValues", func(t *testing.T) {
		opts := RoundTripOptions{
			Bucket: "bucket",
			Key:    "custom.txt",
			Body:   []byte("custom"),
		}
		require.NoError(t, opts.Validate())
		assert.Equal(t, "custom.txt", opts.Key)
		assert.Equal(t, []byte("custom"), opts.Body)
	})
}

func TestRoundTripProbe(t *testing.T) {
	assert.Implements(t, (*matcha.Probe)(nil), &RoundTripProbe{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t.Run("FailsWithInvalidOptions", func(t *testing.T) {
		p, err := NewRoundTripProbe(&mock.S3Client{}, RoundTripOptions{})
		assert.Error(t, err)
		assert.Zero(t, p)
	})

	for tName, tCase := range map[string]func(ctx context.Context, t *testing.T, c *mock.S3Client){
		"SucceedsAndRoundTripsObject": func(ctx context.Context, t *testing.T, c *mock.S3Client) {
			p, err := NewRoundTripProbe(c, RoundTripOptions{Bucket: "probe-bucket"})
			require.NoError(t, err)

			require.NoError(t, p.Check(ctx))

			stored, ok := mock.GlobalObjectStore["probe-bucket"]["round-trip.txt"]
			require.True(t, ok)
			assert.Equal(t, []byte("hello from matcha"), stored.Body)
		},
		"SucceedsWhenBucketAlreadyExists": func(ctx context.Context, t *testing.T, c *mock.S3Client) {
			_, err := c.CreateBucket(ctx, &awss3.CreateBucketInput{
				Bucket: utility.ToStringPtr("probe-bucket"),
			})
			require.NoError(t, err)

			p, err := NewRoundTripProbe(c, RoundTripOptions{Bucket: "probe-bucket"})
			require.NoError(t, err)

			assert.NoError(t, p.Check(ctx))
		},
		"FailsWhenObjectCannotBeRead": func(ctx context.Context, t *testing.T, c *mock.S3Client) {
			c.GetObjectError = errors.New("object storage is down")

			p, err := NewRoundTripProbe(c, RoundTripOptions{Bucket: "probe-bucket"})
			require.NoError(t, err)

			assert.Error(t, p.Check(ctx))
		},
		"FailsWhenReadBackBytesDiffer": func(ctx context.Context, t *testing.T, c *mock.S3Client) {
			c.GetObjectOutput = &awss3.GetObjectOutput{
				Body: io.NopCloser(bytes.NewReader([]byte("tampered"))),
			}

			p, err := NewRoundTripProbe(c, RoundTripOptions{Bucket: "probe-bucket"})
			require.NoError(t, err)

			assert.Error(t, p.Check(ctx))
		},
	} {
		t.Run(tName, func(t *testing.T) {
			tctx, tcancel := context.WithTimeout(ctx, 10*time.Second)
			defer tcancel()

			mock.ResetGlobalObjectStore()

			tCase(tctx, t, &mock.S3Client{})
		})
	}
}
