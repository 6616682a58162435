package testcase

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/evergreen-ci/utility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdant-ci/matcha"
	"github.com/verdant-ci/matcha/internal/testutil"
)

// SQSClientTestCase represents a test case for a matcha.SQSClient.
type SQSClientTestCase func(ctx context.Context, t *testing.T, c matcha.SQSClient)

// SQSClientTests returns common test cases that a matcha.SQSClient
// should support.
func SQSClientTests() map[string]SQSClientTestCase {
	makeQueue := func(ctx context.Context, t *testing.T, c matcha.SQSClient) string {
		out, err := c.CreateQueue(ctx, &sqs.CreateQueueInput{
			QueueName: utility.ToStringPtr(testutil.NewResourceName(t)),
		})
		require.NoError(t, err)
		require.NotZero(t, out)
		require.NotZero(t, out.QueueUrl)
		return utility.FromStringPtr(out.QueueUrl)
	}

	return map[string]SQSClientTestCase{
		"CreateQueueIsIdempotent": func(ctx context.Context, t *testing.T, c matcha.SQSClient) {
			name := testutil.NewResourceName(t)
			out, err := c.CreateQueue(ctx, &sqs.CreateQueueInput{
				QueueName: utility.ToStringPtr(name),
			})
			require.NoError(t, err)
			require.NotZero(t, out)

			defer cleanupQueue(ctx, t, c, utility.FromStringPtr(out.QueueUrl))

			again, err := c.CreateQueue(ctx, &sqs.CreateQueueInput{
				QueueName: utility.ToStringPtr(name),
			})
			require.NoError(t, err)
			require.NotZero(t, again)
			assert.Equal(t, utility.FromStringPtr(out.QueueUrl), utility.FromStringPtr(again.QueueUrl))
		},
		"GetQueueAttributesReturnsARN": func(ctx context.Context, t *testing.T, c matcha.SQSClient) {
			url := makeQueue(ctx, t, c)

			defer cleanupQueue(ctx, t, c, url)

			out, err := c.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
				QueueUrl:       utility.ToStringPtr(url),
				AttributeNames: []types.QueueAttributeName{types.QueueAttributeNameQueueArn},
			})
			require.NoError(t, err)
			require.NotZero(t, out)
			assert.NotEmpty(t, out.Attributes[string(types.QueueAttributeNameQueueArn)])
		},
		"GetQueueAttributesFailsWithNonexistentQueue": func(ctx context.Context, t *testing.T, c matcha.SQSClient) {
			out, err := c.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
				QueueUrl:       utility.ToStringPtr("http://localhost:4566/000000000000/nonexistent"),
				AttributeNames: []types.QueueAttributeName{types.QueueAttributeNameQueueArn},
			})
			assert.Error(t, err)
			assert.Zero(t, out)
		},
		"SendAndReceiveMessageRoundTrips": func(ctx context.Context, t *testing.T, c matcha.SQSClient) {
			url := makeQueue(ctx, t, c)

			defer cleanupQueue(ctx, t, c, url)

			_, err := c.SendMessage(ctx, &sqs.SendMessageInput{
				QueueUrl:    utility.ToStringPtr(url),
				MessageBody: utility.ToStringPtr("hello from matcha"),
			})
			require.NoError(t, err)

			out, err := c.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
				QueueUrl:            utility.ToStringPtr(url),
				MaxNumberOfMessages: 1,
			})
			require.NoError(t, err)
			require.NotZero(t, out)
			require.Len(t, out.Messages, 1)
			assert.Equal(t, "hello from matcha", utility.FromStringPtr(out.Messages[0].Body))

			_, err = c.DeleteMessage(ctx, &sqs.DeleteMessageInput{
				QueueUrl:      utility.ToStringPtr(url),
				ReceiptHandle: out.Messages[0].ReceiptHandle,
			})
			require.NoError(t, err)
		},
		"ReceiveMessageReturnsEmptyOutputForEmptyQueue": func(ctx context.Context, t *testing.T, c matcha.SQSClient) {
			url := makeQueue(ctx, t, c)

			defer cleanupQueue(ctx, t, c, url)

			out, err := c.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
				QueueUrl:            utility.ToStringPtr(url),
				MaxNumberOfMessages: 1,
			})
			require.NoError(t, err)
			require.NotZero(t, out)
			assert.Empty(t, out.Messages)
		},
		"DeleteMessageFailsWithInvalidReceiptHandle": func(ctx context.Context, t *testing.T, c matcha.SQSClient) {
			url := makeQueue(ctx, t, c)

			defer cleanupQueue(ctx, t, c, url)

			out, err := c.DeleteMessage(ctx, &sqs.DeleteMessageInput{
				QueueUrl:      utility.ToStringPtr(url),
				ReceiptHandle: utility.ToStringPtr("bogus-receipt-handle"),
			})
			assert.Error(t, err)
			assert.Zero(t, out)
		},
	}
}

func cleanupQueue(ctx context.Context, t *testing.T, c matcha.SQSClient, url string) {
	_, err := c.DeleteQueue(ctx, &sqs.DeleteQueueInput{
		QueueUrl: utility.ToStringPtr(url),
	})
	assert.NoError(t, err)
}
