package s3

import (
	"bytes"
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"github.com/verdant-ci/matcha"
)

// RoundTripOptions configure a RoundTripProbe.
type RoundTripOptions struct {
	// Bucket is the name of the bucket the probe stores its object in.
	Bucket string
	// Key is the key of the stored object.
	Key string
	// Body is the object payload to store and read back.
	Body []byte
}

// Validate checks that the required fields are given and sets defaults
// for unspecified options.
func (o *RoundTripOptions) Validate() error {
	catcher := grip.NewBasicCatcher()
	catcher.NewWhen(o.Bucket == "", "must provide a bucket name")

	if catcher.HasErrors() {
		return catcher.Resolve()
	}

	if o.Key == "" {
		o.Key = "round-trip.txt"
	}
	if len(o.Body) == 0 {
		o.Body = []byte("hello from matcha")
	}

	return nil
}

// RoundTripProbe verifies that the emulator can create a bucket, store an
// object in it, and serve the same bytes back.
type RoundTripProbe struct {
	client matcha.S3Client
	opts   RoundTripOptions
}

// NewRoundTripProbe creates a probe that verifies object storage round
// trips through the given client.
func NewRoundTripProbe(c matcha.S3Client, opts RoundTripOptions) (*RoundTripProbe, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}

	return &RoundTripProbe{client: c, opts: opts}, nil
}

// Name returns the probe's identifier.
func (p *RoundTripProbe) Name() string {
	return "s3-object-round-trip"
}

// Check creates the bucket, writes the object, reads it back, and
// verifies that the returned payload matches what was stored. Re-running
// the check against a bucket left over from a previous run is not an
// error.
func (p *RoundTripProbe) Check(ctx context.Context) error {
	if _, err := p.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: utility.ToStringPtr(p.opts.Bucket),
	}); err != nil && !isBucketAlreadyOwned(err) {
		return errors.Wrapf(err, "creating bucket '%s'", p.opts.Bucket)
	}

	if _, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: utility.ToStringPtr(p.opts.Bucket),
		Key:    utility.ToStringPtr(p.opts.Key),
		Body:   bytes.NewReader(p.opts.Body),
	}); err != nil {
		return errors.Wrapf(err, "putting object '%s'", p.opts.Key)
	}

	out, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: utility.ToStringPtr(p.opts.Bucket),
		Key:    utility.ToStringPtr(p.opts.Key),
	})
	if err != nil {
		return errors.Wrapf(err, "getting object '%s'", p.opts.Key)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return errors.Wrap(err, "reading object body")
	}

	if !bytes.Equal(body, p.opts.Body) {
		return errors.Errorf("object round trip mismatch: stored %d bytes but read back %d bytes", len(p.opts.Body), len(body))
	}

	return nil
}

func isBucketAlreadyOwned(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "BucketAlreadyOwnedByYou"
	}
	return false
}
