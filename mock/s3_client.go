package mock

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/evergreen-ci/utility"
	"github.com/pkg/errors"
)

// StoredObject is a representation of an object kept in the global object
// storage cache.
type StoredObject struct {
	Key      string
	Body     []byte
	Created  time.Time
	Modified time.Time
}

// GlobalObjectStore is a global storage cache that provides a simplified
// in-memory implementation of an object storage service, keyed first by
// bucket name and then by object key. This can be used indirectly with
// the S3Client to access and modify objects, or used directly.
var GlobalObjectStore map[string]map[string]StoredObject

func init() {
	ResetGlobalObjectStore()
}

// ResetGlobalObjectStore resets the global fake object storage cache to
// an initialized but clean state.
func ResetGlobalObjectStore() {
	GlobalObjectStore = map[string]map[string]StoredObject{}
}

// S3Client provides a mock implementation of a matcha.S3Client. This
// makes it possible to introspect on inputs to the client and control the
// client's output. It provides some default implementations where
// possible. By default, it will issue the API calls to the fake
// GlobalObjectStore.
type S3Client struct {
	CreateBucketInput  *s3.CreateBucketInput
	CreateBucketOutput *s3.CreateBucketOutput
	CreateBucketError  error

	PutObjectInput  *s3.PutObjectInput
	PutObjectOutput *s3.PutObjectOutput
	PutObjectError  error

	GetObjectInput  *s3.GetObjectInput
	GetObjectOutput *s3.GetObjectOutput
	GetObjectError  error

	DeleteObjectInput  *s3.DeleteObjectInput
	DeleteObjectOutput *s3.DeleteObjectOutput
	DeleteObjectError  error

	DeleteBucketInput  *s3.DeleteBucketInput
	DeleteBucketOutput *s3.DeleteBucketOutput
	DeleteBucketError  error

	CloseError error
}

// CreateBucket saves the input and creates the bucket in the global
// object storage cache. The mock output can be customized. By default, it
// will return a location based on the bucket name.
func (c *S3Client) CreateBucket(ctx context.Context, in *s3.CreateBucketInput) (*s3.CreateBucketOutput, error) {
	c.CreateBucketInput = in

	if c.CreateBucketOutput != nil || c.CreateBucketError != nil {
		return c.CreateBucketOutput, c.CreateBucketError
	}

	bucket := utility.FromStringPtr(in.Bucket)
	if bucket == "" {
		return nil, errors.New("missing bucket name")
	}

	if _, ok := GlobalObjectStore[bucket]; !ok {
		GlobalObjectStore[bucket] = map[string]StoredObject{}
	}

	return &s3.CreateBucketOutput{
		Location: utility.ToStringPtr("/" + bucket),
	}, nil
}

// PutObject saves the input and writes the object into the global object
// storage cache. The mock output can be customized.
func (c *S3Client) PutObject(ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
	c.PutObjectInput = in

	if c.PutObjectOutput != nil || c.PutObjectError != nil {
		return c.PutObjectOutput, c.PutObjectError
	}

	bucket := utility.FromStringPtr(in.Bucket)
	objects, ok := GlobalObjectStore[bucket]
	if !ok {
		return nil, &types.NoSuchBucket{}
	}

	key := utility.FromStringPtr(in.Key)
	if key == "" {
		return nil, errors.New("missing object key")
	}

	var body []byte
	if in.Body != nil {
		var err error
		body, err = io.ReadAll(in.Body)
		if err != nil {
			return nil, errors.Wrap(err, "reading input body")
		}
	}

	ts := time.Now()
	stored, ok := objects[key]
	if !ok {
		stored = StoredObject{Key: key, Created: ts}
	}
	stored.Body = body
	stored.Modified = ts
	objects[key] = stored

	return &s3.PutObjectOutput{}, nil
}

// GetObject saves the input and returns the object from the global object
// storage cache. The mock output can be customized.
func (c *S3Client) GetObject(ctx context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
	c.GetObjectInput = in

	if c.GetObjectOutput != nil || c.GetObjectError != nil {
		return c.GetObjectOutput, c.GetObjectError
	}

	objects, ok := GlobalObjectStore[utility.FromStringPtr(in.Bucket)]
	if !ok {
		return nil, &types.NoSuchBucket{}
	}

	stored, ok := objects[utility.FromStringPtr(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}

	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(stored.Body)),
		ContentLength: aws.Int64(int64(len(stored.Body))),
		LastModified:  utility.ToTimePtr(stored.Modified),
	}, nil
}

// DeleteObject saves the input and deletes the object from the global
// object storage cache. The mock output can be customized.
func (c *S3Client) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
	c.DeleteObjectInput = in

	if c.DeleteObjectOutput != nil || c.DeleteObjectError != nil {
		return c.DeleteObjectOutput, c.DeleteObjectError
	}

	objects, ok := GlobalObjectStore[utility.FromStringPtr(in.Bucket)]
	if !ok {
		return nil, &types.NoSuchBucket{}
	}

	delete(objects, utility.FromStringPtr(in.Key))

	return &s3.DeleteObjectOutput{}, nil
}

// DeleteBucket saves the input and deletes the bucket from the global
// object storage cache if it is empty. The mock output can be customized.
func (c *S3Client) DeleteBucket(ctx context.Context, in *s3.DeleteBucketInput) (*s3.DeleteBucketOutput, error) {
	c.DeleteBucketInput = in

	if c.DeleteBucketOutput != nil || c.DeleteBucketError != nil {
		return c.DeleteBucketOutput, c.DeleteBucketError
	}

	bucket := utility.FromStringPtr(in.Bucket)
	objects, ok := GlobalObjectStore[bucket]
	if !ok {
		return nil, &types.NoSuchBucket{}
	}
	if len(objects) != 0 {
		return nil, errors.Errorf("bucket '%s' is not empty", bucket)
	}

	delete(GlobalObjectStore, bucket)

	return &s3.DeleteBucketOutput{}, nil
}

// Close closes the mock client. The mock output can be customized. By
// default, it is a no-op that returns no error.
func (c *S3Client) Close(ctx context.Context) error {
	return c.CloseError
}
