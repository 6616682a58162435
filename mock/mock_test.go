package mock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/verdant-ci/matcha"
)

func TestInterfaces(t *testing.T) {
	assert.Implements(t, (*matcha.S3Client)(nil), &S3Client{})
	assert.Implements(t, (*matcha.DynamoDBClient)(nil), &DynamoDBClient{})
	assert.Implements(t, (*matcha.SQSClient)(nil), &SQSClient{})
	assert.Implements(t, (*matcha.SNSClient)(nil), &SNSClient{})
	assert.Implements(t, (*matcha.LambdaClient)(nil), &LambdaClient{})
}
