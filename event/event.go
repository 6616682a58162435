// Package event defines the bucket notification event documents that
// S3-compatible emulators deliver to functions subscribed to object
// changes.
package event

import (
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/goccy/go-json"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
)

const (
	// Version is the notification event schema version.
	Version = "2.1"
	// Source identifies object storage as the origin of the event.
	Source = "aws:s3"

	// NameObjectCreatedPut is the event name recorded when an object is
	// written with a put operation.
	NameObjectCreatedPut = "ObjectCreated:Put"
)

// S3Event is the top-level notification document. A single delivery can
// carry multiple records.
type S3Event struct {
	Records []S3EventRecord `json:"Records"`
}

// S3EventRecord describes one object change.
type S3EventRecord struct {
	EventVersion string          `json:"eventVersion"`
	EventSource  string          `json:"eventSource"`
	AWSRegion    string          `json:"awsRegion"`
	EventTime    strfmt.DateTime `json:"eventTime"`
	EventName    string          `json:"eventName"`
	S3           S3Entity        `json:"s3"`
}

// S3Entity names the bucket and object the record refers to.
type S3Entity struct {
	Bucket S3BucketEntity `json:"bucket"`
	Object S3ObjectEntity `json:"object"`
}

// S3BucketEntity identifies the bucket an object change happened in.
type S3BucketEntity struct {
	Name string `json:"name"`
}

// S3ObjectEntity identifies the changed object.
type S3ObjectEntity struct {
	Key string `json:"key"`
}

// NewObjectCreated returns the event describing a single object put into
// a bucket at the given time.
func NewObjectCreated(region, bucket, key string, ts time.Time) *S3Event {
	return &S3Event{
		Records: []S3EventRecord{
			{
				EventVersion: Version,
				EventSource:  Source,
				AWSRegion:    region,
				EventTime:    strfmt.DateTime(ts),
				EventName:    NameObjectCreatedPut,
				S3: S3Entity{
					Bucket: S3BucketEntity{Name: bucket},
					Object: S3ObjectEntity{Key: key},
				},
			},
		},
	}
}

// Validate checks that the event is well-formed: it must carry at least
// one record, and every record must name its schema version, source,
// region, event name, bucket, and object.
func (e *S3Event) Validate() error {
	catcher := grip.NewBasicCatcher()
	catcher.NewWhen(len(e.Records) == 0, "event must contain at least one record")

	for i, r := range e.Records {
		catcher.ErrorfWhen(r.EventVersion == "", "record %d is missing the event version", i)
		catcher.ErrorfWhen(r.EventSource != Source, "record %d has event source '%s' instead of '%s'", i, r.EventSource, Source)
		catcher.ErrorfWhen(r.AWSRegion == "", "record %d is missing the region", i)
		catcher.ErrorfWhen(r.EventName == "", "record %d is missing the event name", i)
		catcher.ErrorfWhen(time.Time(r.EventTime).IsZero(), "record %d is missing the event time", i)
		catcher.ErrorfWhen(r.S3.Bucket.Name == "", "record %d is missing the bucket name", i)
		catcher.ErrorfWhen(r.S3.Object.Key == "", "record %d is missing the object key", i)
	}

	return catcher.Resolve()
}

// Marshal returns the JSON encoding of the event.
func (e *S3Event) Marshal() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling event")
	}
	return data, nil
}

// UnmarshalS3Event decodes an event from its JSON encoding.
func UnmarshalS3Event(data []byte) (*S3Event, error) {
	var e S3Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, errors.Wrap(err, "unmarshalling event")
	}
	return &e, nil
}
