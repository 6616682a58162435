package matcha

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SQSClient provides a common interface to interact with an
// SQS-compatible queue endpoint and its mock implementation for testing.
// Implementations must handle retrying and backoff.
type SQSClient interface {
	// CreateQueue creates a new queue and returns its URL. Creating a
	// queue that already exists with the same attributes is not an error.
	CreateQueue(ctx context.Context, in *sqs.CreateQueueInput) (*sqs.CreateQueueOutput, error)
	// GetQueueAttributes gets attributes of an existing queue, such as its
	// ARN.
	GetQueueAttributes(ctx context.Context, in *sqs.GetQueueAttributesInput) (*sqs.GetQueueAttributesOutput, error)
	// SendMessage sends a message to a queue.
	SendMessage(ctx context.Context, in *sqs.SendMessageInput) (*sqs.SendMessageOutput, error)
	// ReceiveMessage receives available messages from a queue.
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error)
	// DeleteMessage deletes a previously-received message from a queue.
	DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error)
	// DeleteQueue deletes an existing queue.
	DeleteQueue(ctx context.Context, in *sqs.DeleteQueueInput) (*sqs.DeleteQueueOutput, error)
	// Close closes the client and cleans up its resources. Implementations
	// should ensure that this is idempotent.
	Close(ctx context.Context) error
}
