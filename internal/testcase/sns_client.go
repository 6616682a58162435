package testcase

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/evergreen-ci/utility"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdant-ci/matcha"
	"github.com/verdant-ci/matcha/internal/testutil"
)

// SNSClientTestCase represents a test case for a matcha.SNSClient. Fan-out
// cases need a queue to deliver to, so each case also takes a
// matcha.SQSClient.
type SNSClientTestCase func(ctx context.Context, t *testing.T, c matcha.SNSClient, sqsc matcha.SQSClient)

// SNSClientTests returns common test cases that a matcha.SNSClient
// should support.
func SNSClientTests() map[string]SNSClientTestCase {
	makeTopic := func(ctx context.Context, t *testing.T, c matcha.SNSClient) string {
		out, err := c.CreateTopic(ctx, &sns.CreateTopicInput{
			Name: utility.ToStringPtr(testutil.NewResourceName(t)),
		})
		require.NoError(t, err)
		require.NotZero(t, out)
		require.NotZero(t, out.TopicArn)
		return utility.FromStringPtr(out.TopicArn)
	}

	return map[string]SNSClientTestCase{
		"CreateTopicIsIdempotent": func(ctx context.Context, t *testing.T, c matcha.SNSClient, sqsc matcha.SQSClient) {
			name := testutil.NewResourceName(t)
			out, err := c.CreateTopic(ctx, &sns.CreateTopicInput{
				Name: utility.ToStringPtr(name),
			})
			require.NoError(t, err)
			require.NotZero(t, out)

			defer cleanupTopic(ctx, t, c, utility.FromStringPtr(out.TopicArn))

			again, err := c.CreateTopic(ctx, &sns.CreateTopicInput{
				Name: utility.ToStringPtr(name),
			})
			require.NoError(t, err)
			require.NotZero(t, again)
			assert.Equal(t, utility.FromStringPtr(out.TopicArn), utility.FromStringPtr(again.TopicArn))
		},
		"PublishFailsWithNonexistentTopic": func(ctx context.Context, t *testing.T, c matcha.SNSClient, sqsc matcha.SQSClient) {
			out, err := c.Publish(ctx, &sns.PublishInput{
				TopicArn: utility.ToStringPtr("arn:aws:sns:us-east-1:000000000000:nonexistent"),
				Message:  utility.ToStringPtr("undeliverable"),
			})
			assert.Error(t, err)
			assert.Zero(t, out)
		},
		"SubscribeAndPublishDeliversToQueue": func(ctx context.Context, t *testing.T, c matcha.SNSClient, sqsc matcha.SQSClient) {
			topicARN := makeTopic(ctx, t, c)

			defer cleanupTopic(ctx, t, c, topicARN)

			queue, err := sqsc.CreateQueue(ctx, &sqs.CreateQueueInput{
				QueueName: utility.ToStringPtr(testutil.NewResourceName(t)),
			})
			require.NoError(t, err)

			defer cleanupQueue(ctx, t, sqsc, utility.FromStringPtr(queue.QueueUrl))

			attrs, err := sqsc.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
				QueueUrl:       queue.QueueUrl,
				AttributeNames: []sqstypes.QueueAttributeName{sqstypes.QueueAttributeNameQueueArn},
			})
			require.NoError(t, err)
			queueARN := attrs.Attributes[string(sqstypes.QueueAttributeNameQueueArn)]
			require.NotEmpty(t, queueARN)

			sub, err := c.Subscribe(ctx, &sns.SubscribeInput{
				TopicArn: utility.ToStringPtr(topicARN),
				Protocol: utility.ToStringPtr("sqs"),
				Endpoint: utility.ToStringPtr(queueARN),
			})
			require.NoError(t, err)
			require.NotZero(t, sub)

			_, err = c.Publish(ctx, &sns.PublishInput{
				TopicArn: utility.ToStringPtr(topicARN),
				Message:  utility.ToStringPtr("hello from matcha"),
			})
			require.NoError(t, err)

			received := receiveNotification(ctx, t, sqsc, utility.FromStringPtr(queue.QueueUrl))
			assert.Equal(t, "hello from matcha", received.Message)
			assert.Equal(t, topicARN, received.TopicArn)
		},
		"UnsubscribeRemovesSubscription": func(ctx context.Context, t *testing.T, c matcha.SNSClient, sqsc matcha.SQSClient) {
			topicARN := makeTopic(ctx, t, c)

			defer cleanupTopic(ctx, t, c, topicARN)

			queue, err := sqsc.CreateQueue(ctx, &sqs.CreateQueueInput{
				QueueName: utility.ToStringPtr(testutil.NewResourceName(t)),
			})
			require.NoError(t, err)

			defer cleanupQueue(ctx, t, sqsc, utility.FromStringPtr(queue.QueueUrl))

			attrs, err := sqsc.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
				QueueUrl:       queue.QueueUrl,
				AttributeNames: []sqstypes.QueueAttributeName{sqstypes.QueueAttributeNameQueueArn},
			})
			require.NoError(t, err)

			sub, err := c.Subscribe(ctx, &sns.SubscribeInput{
				TopicArn: utility.ToStringPtr(topicARN),
				Protocol: utility.ToStringPtr("sqs"),
				Endpoint: utility.ToStringPtr(attrs.Attributes[string(sqstypes.QueueAttributeNameQueueArn)]),
			})
			require.NoError(t, err)

			out, err := c.Unsubscribe(ctx, &sns.UnsubscribeInput{
				SubscriptionArn: sub.SubscriptionArn,
			})
			require.NoError(t, err)
			require.NotZero(t, out)
		},
		"DeleteTopicFailsWithInvalidARN": func(ctx context.Context, t *testing.T, c matcha.SNSClient, sqsc matcha.SQSClient) {
			out, err := c.DeleteTopic(ctx, &sns.DeleteTopicInput{
				TopicArn: utility.ToStringPtr("not-an-arn"),
			})
			assert.Error(t, err)
			assert.Zero(t, out)
		},
	}
}

// receiveNotification polls the queue until a notification envelope
// arrives and returns its decoded contents.
func receiveNotification(ctx context.Context, t *testing.T, sqsc matcha.SQSClient, queueURL string) notificationEnvelope {
	var envelope notificationEnvelope
	require.NoError(t, utility.Retry(ctx, func() (bool, error) {
		out, err := sqsc.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            utility.ToStringPtr(queueURL),
			MaxNumberOfMessages: 1,
		})
		if err != nil {
			return false, err
		}
		if len(out.Messages) == 0 {
			return true, errors.New("no notification delivered yet")
		}
		if err := json.Unmarshal([]byte(utility.FromStringPtr(out.Messages[0].Body)), &envelope); err != nil {
			return false, err
		}
		_, err = sqsc.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      utility.ToStringPtr(queueURL),
			ReceiptHandle: out.Messages[0].ReceiptHandle,
		})
		return false, err
	}, utility.RetryOptions{
		MaxAttempts: 10,
		MinDelay:    100 * time.Millisecond,
		MaxDelay:    time.Second,
	}))
	return envelope
}

// notificationEnvelope is the wrapper that pub/sub services put around
// messages delivered to queue subscribers.
type notificationEnvelope struct {
	Type     string `json:"Type"`
	Message  string `json:"Message"`
	TopicArn string `json:"TopicArn"`
}

func cleanupTopic(ctx context.Context, t *testing.T, c matcha.SNSClient, arn string) {
	_, err := c.DeleteTopic(ctx, &sns.DeleteTopicInput{
		TopicArn: utility.ToStringPtr(arn),
	})
	assert.NoError(t, err)
}
