package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/evergreen-ci/utility"
	"github.com/pkg/errors"
)

// StoredQueue is a representation of a queue kept in the global queue
// service cache.
type StoredQueue struct {
	Name     string
	URL      string
	ARN      string
	Messages []StoredMessage
	Created  time.Time
}

// StoredMessage is a representation of a message kept in a StoredQueue.
type StoredMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
	Sent          time.Time
}

// GlobalQueueService is a global storage cache that provides a simplified
// in-memory implementation of a queue service, keyed by queue URL. This
// can be used indirectly with the SQSClient to access and modify queues,
// or used directly. The SNSClient delivers published notifications into
// subscribed queues in this cache.
var GlobalQueueService map[string]*StoredQueue

func init() {
	ResetGlobalQueueService()
}

// ResetGlobalQueueService resets the global fake queue service cache to
// an initialized but clean state.
func ResetGlobalQueueService() {
	GlobalQueueService = map[string]*StoredQueue{}
}

func mockQueueURL(name string) string {
	return fmt.Sprintf("http://localhost:4566/000000000000/%s", name)
}

func mockQueueARN(name string) string {
	return fmt.Sprintf("arn:aws:sqs:us-east-1:000000000000:%s", name)
}

func findQueueByARN(arn string) *StoredQueue {
	for _, q := range GlobalQueueService {
		if q.ARN == arn {
			return q
		}
	}
	return nil
}

// SQSClient provides a mock implementation of a matcha.SQSClient. This
// makes it possible to introspect on inputs to the client and control the
// client's output. It provides some default implementations where
// possible. By default, it will issue the API calls to the fake
// GlobalQueueService.
type SQSClient struct {
	CreateQueueInput  *sqs.CreateQueueInput
	CreateQueueOutput *sqs.CreateQueueOutput
	CreateQueueError  error

	GetQueueAttributesInput  *sqs.GetQueueAttributesInput
	GetQueueAttributesOutput *sqs.GetQueueAttributesOutput
	GetQueueAttributesError  error

	SendMessageInput  *sqs.SendMessageInput
	SendMessageOutput *sqs.SendMessageOutput
	SendMessageError  error

	ReceiveMessageInput  *sqs.ReceiveMessageInput
	ReceiveMessageOutput *sqs.ReceiveMessageOutput
	ReceiveMessageError  error

	DeleteMessageInput  *sqs.DeleteMessageInput
	DeleteMessageOutput *sqs.DeleteMessageOutput
	DeleteMessageError  error

	DeleteQueueInput  *sqs.DeleteQueueInput
	DeleteQueueOutput *sqs.DeleteQueueOutput
	DeleteQueueError  error

	CloseError error
}

// CreateQueue saves the input and creates the queue in the global queue
// service cache. Creating a queue that already exists returns the
// existing queue's URL. The mock output can be customized.
func (c *SQSClient) CreateQueue(ctx context.Context, in *sqs.CreateQueueInput) (*sqs.CreateQueueOutput, error) {
	c.CreateQueueInput = in

	if c.CreateQueueOutput != nil || c.CreateQueueError != nil {
		return c.CreateQueueOutput, c.CreateQueueError
	}

	name := utility.FromStringPtr(in.QueueName)
	if name == "" {
		return nil, errors.New("missing queue name")
	}

	url := mockQueueURL(name)
	if _, ok := GlobalQueueService[url]; !ok {
		GlobalQueueService[url] = &StoredQueue{
			Name:    name,
			URL:     url,
			ARN:     mockQueueARN(name),
			Created: time.Now(),
		}
	}

	return &sqs.CreateQueueOutput{
		QueueUrl: utility.ToStringPtr(url),
	}, nil
}

// GetQueueAttributes saves the input and returns the queue's attributes
// from the global queue service cache. The mock output can be customized.
func (c *SQSClient) GetQueueAttributes(ctx context.Context, in *sqs.GetQueueAttributesInput) (*sqs.GetQueueAttributesOutput, error) {
	c.GetQueueAttributesInput = in

	if c.GetQueueAttributesOutput != nil || c.GetQueueAttributesError != nil {
		return c.GetQueueAttributesOutput, c.GetQueueAttributesError
	}

	q, ok := GlobalQueueService[utility.FromStringPtr(in.QueueUrl)]
	if !ok {
		return nil, &types.QueueDoesNotExist{}
	}

	return &sqs.GetQueueAttributesOutput{
		Attributes: map[string]string{
			string(types.QueueAttributeNameQueueArn): q.ARN,
		},
	}, nil
}

// SendMessage saves the input and appends the message to the queue in the
// global queue service cache. The mock output can be customized.
func (c *SQSClient) SendMessage(ctx context.Context, in *sqs.SendMessageInput) (*sqs.SendMessageOutput, error) {
	c.SendMessageInput = in

	if c.SendMessageOutput != nil || c.SendMessageError != nil {
		return c.SendMessageOutput, c.SendMessageError
	}

	q, ok := GlobalQueueService[utility.FromStringPtr(in.QueueUrl)]
	if !ok {
		return nil, &types.QueueDoesNotExist{}
	}

	msg := StoredMessage{
		ID:            utility.RandomString(),
		Body:          utility.FromStringPtr(in.MessageBody),
		ReceiptHandle: utility.RandomString(),
		Sent:          time.Now(),
	}
	q.Messages = append(q.Messages, msg)

	return &sqs.SendMessageOutput{
		MessageId: utility.ToStringPtr(msg.ID),
	}, nil
}

// ReceiveMessage saves the input and returns messages from the queue in
// the global queue service cache. Received messages stay in the queue
// until they are deleted by their receipt handle. The mock output can be
// customized.
func (c *SQSClient) ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error) {
	c.ReceiveMessageInput = in

	if c.ReceiveMessageOutput != nil || c.ReceiveMessageError != nil {
		return c.ReceiveMessageOutput, c.ReceiveMessageError
	}

	q, ok := GlobalQueueService[utility.FromStringPtr(in.QueueUrl)]
	if !ok {
		return nil, &types.QueueDoesNotExist{}
	}

	max := int(in.MaxNumberOfMessages)
	if max <= 0 {
		max = 1
	}

	var received []types.Message
	for _, msg := range q.Messages {
		if len(received) >= max {
			break
		}
		received = append(received, types.Message{
			MessageId:     utility.ToStringPtr(msg.ID),
			Body:          utility.ToStringPtr(msg.Body),
			ReceiptHandle: utility.ToStringPtr(msg.ReceiptHandle),
		})
	}

	return &sqs.ReceiveMessageOutput{Messages: received}, nil
}

// DeleteMessage saves the input and removes the message with the matching
// receipt handle from the queue in the global queue service cache. The
// mock output can be customized.
func (c *SQSClient) DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error) {
	c.DeleteMessageInput = in

	if c.DeleteMessageOutput != nil || c.DeleteMessageError != nil {
		return c.DeleteMessageOutput, c.DeleteMessageError
	}

	q, ok := GlobalQueueService[utility.FromStringPtr(in.QueueUrl)]
	if !ok {
		return nil, &types.QueueDoesNotExist{}
	}

	handle := utility.FromStringPtr(in.ReceiptHandle)
	for i, msg := range q.Messages {
		if msg.ReceiptHandle == handle {
			q.Messages = append(q.Messages[:i], q.Messages[i+1:]...)
			return &sqs.DeleteMessageOutput{}, nil
		}
	}

	return nil, &types.ReceiptHandleIsInvalid{}
}

// DeleteQueue saves the input and deletes the queue from the global queue
// service cache. The mock output can be customized.
func (c *SQSClient) DeleteQueue(ctx context.Context, in *sqs.DeleteQueueInput) (*sqs.DeleteQueueOutput, error) {
	c.DeleteQueueInput = in

	if c.DeleteQueueOutput != nil || c.DeleteQueueError != nil {
		return c.DeleteQueueOutput, c.DeleteQueueError
	}

	url := utility.FromStringPtr(in.QueueUrl)
	if _, ok := GlobalQueueService[url]; !ok {
		return nil, &types.QueueDoesNotExist{}
	}

	delete(GlobalQueueService, url)

	return &sqs.DeleteQueueOutput{}, nil
}

// Close closes the mock client. The mock output can be customized. By
// default, it is a no-op that returns no error.
func (c *SQSClient) Close(ctx context.Context) error {
	return c.CloseError
}
