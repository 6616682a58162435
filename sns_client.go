package matcha

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSClient provides a common interface to interact with an
// SNS-compatible pub/sub endpoint and its mock implementation for
// testing. Implementations must handle retrying and backoff.
type SNSClient interface {
	// CreateTopic creates a new topic and returns its ARN. Creating a
	// topic that already exists returns the existing topic's ARN.
	CreateTopic(ctx context.Context, in *sns.CreateTopicInput) (*sns.CreateTopicOutput, error)
	// Subscribe subscribes an endpoint (such as a queue) to a topic.
	Subscribe(ctx context.Context, in *sns.SubscribeInput) (*sns.SubscribeOutput, error)
	// Publish publishes a message to all of a topic's subscribers.
	Publish(ctx context.Context, in *sns.PublishInput) (*sns.PublishOutput, error)
	// Unsubscribe removes an existing subscription from a topic.
	Unsubscribe(ctx context.Context, in *sns.UnsubscribeInput) (*sns.UnsubscribeOutput, error)
	// DeleteTopic deletes an existing topic.
	DeleteTopic(ctx context.Context, in *sns.DeleteTopicInput) (*sns.DeleteTopicOutput, error)
	// Close closes the client and cleans up its resources. Implementations
	// should ensure that this is idempotent.
	Close(ctx context.Context) error
}
