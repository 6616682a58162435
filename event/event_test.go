package event

import (
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObjectCreated(t *testing.T) {
	ts := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	e := NewObjectCreated("us-east-1", "bucket", "object.txt", ts)
	require.NotZero(t, e)
	require.Len(t, e.Records, 1)

	r := e.Records[0]
	assert.Equal(t, Version, r.EventVersion)
	assert.Equal(t, Source, r.EventSource)
	assert.Equal(t, "us-east-1", r.AWSRegion)
	assert.Equal(t, NameObjectCreatedPut, r.EventName)
	assert.True(t, ts.Equal(time.Time(r.EventTime)))
	assert.Equal(t, "bucket", r.S3.Bucket.Name)
	assert.Equal(t, "object.txt", r.S3.Object.Key)

	assert.NoError(t, e.Validate())
}

func TestS3EventValidate(t *testing.T) {
	for tName, tCase := range map[string]func(t *testing.T, e *S3Event){
		"Succeeds": func(t *testing.T, e *S3Event) {
			assert.NoError(t, e.Validate())
		},
		"FailsWithoutRecords": func(t *testing.T, e *S3Event) {
			e.Records = nil
			assert.Error(t, e.Validate())
		},
		"FailsWithoutEventVersion": func(t *testing.T, e *S3Event) {
			e.Records[0].EventVersion = ""
			assert.Error(t, e.Validate())
		},
		"FailsWithWrongEventSource": func(t *testing.T, e *S3Event) {
			e.Records[0].EventSource = "aws:sqs"
			assert.Error(t, e.Validate())
		},
		"FailsWithoutRegion": func(t *testing.T, e *S3Event) {
			e.Records[0].AWSRegion = ""
			assert.Error(t, e.Validate())
		},
		"FailsWithoutEventName": func(t *testing.T, e *S3Event) {
			e.Records[0].EventName = ""
			assert.Error(t, e.Validate())
		},
		"FailsWithZeroEventTime": func(t *testing.T, e *S3Event) {
			e.Records[0].EventTime = strfmt.DateTime{}
			assert.Error(t, e.Validate())
		},
		"FailsWithoutBucketName": func(t *testing.T, e *S3Event) {
			e.Records[0].S3.Bucket.Name = ""
			assert.Error(t, e.Validate())
		},
		"FailsWithoutObjectKey": func(t *testing.T, e *S3Event) {
			e.Records[0].S3.Object.Key = ""
			assert.Error(t, e.Validate())
		},
	} {
		t.Run(tName, func(t *testing.T) {
			tCase(t, NewObjectCreated("us-east-1", "bucket", "object.txt", time.Now().UTC()))
		})
	}
}

func TestMarshal(t *testing.T) {
	e := NewObjectCreated("us-east-1", "bucket", "object.txt", time.Now().UTC())

	data, err := e.Marshal()
	require.NoError(t, err)

	// The encoded document must use the upstream notification field names.
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	records, ok := doc["Records"].([]interface{})
	require.True(t, ok)
	require.Len(t, records, 1)

	record, ok := records[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, Version, record["eventVersion"])
	assert.Equal(t, Source, record["eventSource"])
	assert.Contains(t, record, "eventTime")
	assert.Contains(t, record, "s3")
}

func TestUnmarshalS3Event(t *testing.T) {
	t.Run("RoundTripsEvent", func(t *testing.T) {
		e := NewObjectCreated("us-east-1", "bucket", "object.txt", time.Now().UTC())

		data, err := e.Marshal()
		require.NoError(t, err)

		decoded, err := UnmarshalS3Event(data)
		require.NoError(t, err)
		require.Len(t, decoded.Records, 1)
		assert.Equal(t, "bucket", decoded.Records[0].S3.Bucket.Name)
		assert.Equal(t, "object.txt", decoded.Records[0].S3.Object.Key)
		assert.NoError(t, decoded.Validate())
	})
	t.Run("FailsWithMalformedDocument", func(t *testing.T) {
		e, err := UnmarshalS3Event([]byte(`{"Records": "not-a-list"}`))
		assert.Error(t, err)
		assert.Zero(t, e)
	})
}
