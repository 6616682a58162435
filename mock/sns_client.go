package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/evergreen-ci/utility"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// StoredTopic is a representation of a topic kept in the global topic
// service cache.
type StoredTopic struct {
	Name          string
	ARN           string
	Subscriptions map[string]StoredSubscription
	Created       time.Time
}

// StoredSubscription is a representation of a subscription attached to a
// StoredTopic.
type StoredSubscription struct {
	ARN      string
	Protocol string
	Endpoint string
}

// GlobalTopicService is a global storage cache that provides a simplified
// in-memory implementation of a pub/sub topic service, keyed by topic
// ARN. This can be used indirectly with the SNSClient to access and
// modify topics, or used directly. Published messages fan out into
// subscribed queues in the GlobalQueueService.
var GlobalTopicService map[string]*StoredTopic

func init() {
	ResetGlobalTopicService()
}

// ResetGlobalTopicService resets the global fake topic service cache to
// an initialized but clean state.
func ResetGlobalTopicService() {
	GlobalTopicService = map[string]*StoredTopic{}
}

func mockTopicARN(name string) string {
	return fmt.Sprintf("arn:aws:sns:us-east-1:000000000000:%s", name)
}

// notificationEnvelope is the document wrapped around published messages
// before they are delivered to subscribed queues.
type notificationEnvelope struct {
	Type      string `json:"Type"`
	MessageID string `json:"MessageId"`
	TopicArn  string `json:"TopicArn"`
	Message   string `json:"Message"`
	Timestamp string `json:"Timestamp"`
}

// SNSClient provides a mock implementation of a matcha.SNSClient. This
// makes it possible to introspect on inputs to the client and control the
// client's output. It provides some default implementations where
// possible. By default, it will issue the API calls to the fake
// GlobalTopicService.
type SNSClient struct {
	CreateTopicInput  *sns.CreateTopicInput
	CreateTopicOutput *sns.CreateTopicOutput
	CreateTopicError  error

	SubscribeInput  *sns.SubscribeInput
	SubscribeOutput *sns.SubscribeOutput
	SubscribeError  error

	PublishInput  *sns.PublishInput
	PublishOutput *sns.PublishOutput
	PublishError  error

	UnsubscribeInput  *sns.UnsubscribeInput
	UnsubscribeOutput *sns.UnsubscribeOutput
	UnsubscribeError  error

	DeleteTopicInput  *sns.DeleteTopicInput
	DeleteTopicOutput *sns.DeleteTopicOutput
	DeleteTopicError  error

	CloseError error
}

// CreateTopic saves the input and creates the topic in the global topic
// service cache. Creating a topic that already exists returns the
// existing topic's ARN. The mock output can be customized.
func (c *SNSClient) CreateTopic(ctx context.Context, in *sns.CreateTopicInput) (*sns.CreateTopicOutput, error) {
	c.CreateTopicInput = in

	if c.CreateTopicOutput != nil || c.CreateTopicError != nil {
		return c.CreateTopicOutput, c.CreateTopicError
	}

	name := utility.FromStringPtr(in.Name)
	if name == "" {
		return nil, errors.New("missing topic name")
	}

	arn := mockTopicARN(name)
	if _, ok := GlobalTopicService[arn]; !ok {
		GlobalTopicService[arn] = &StoredTopic{
			Name:          name,
			ARN:           arn,
			Subscriptions: map[string]StoredSubscription{},
			Created:       time.Now(),
		}
	}

	return &sns.CreateTopicOutput{
		TopicArn: utility.ToStringPtr(arn),
	}, nil
}

// Subscribe saves the input and attaches the subscription to the topic in
// the global topic service cache. The mock output can be customized.
func (c *SNSClient) Subscribe(ctx context.Context, in *sns.SubscribeInput) (*sns.SubscribeOutput, error) {
	c.SubscribeInput = in

	if c.SubscribeOutput != nil || c.SubscribeError != nil {
		return c.SubscribeOutput, c.SubscribeError
	}

	topic, ok := GlobalTopicService[utility.FromStringPtr(in.TopicArn)]
	if !ok {
		return nil, &types.NotFoundException{}
	}

	sub := StoredSubscription{
		ARN:      fmt.Sprintf("%s:%s", topic.ARN, utility.RandomString()),
		Protocol: utility.FromStringPtr(in.Protocol),
		Endpoint: utility.FromStringPtr(in.Endpoint),
	}
	topic.Subscriptions[sub.ARN] = sub

	return &sns.SubscribeOutput{
		SubscriptionArn: utility.ToStringPtr(sub.ARN),
	}, nil
}

// Publish saves the input and fans the message out to every queue
// subscribed to the topic, wrapping it in a notification envelope like
// the real service does. The mock output can be customized.
func (c *SNSClient) Publish(ctx context.Context, in *sns.PublishInput) (*sns.PublishOutput, error) {
	c.PublishInput = in

	if c.PublishOutput != nil || c.PublishError != nil {
		return c.PublishOutput, c.PublishError
	}

	topic, ok := GlobalTopicService[utility.FromStringPtr(in.TopicArn)]
	if !ok {
		return nil, &types.NotFoundException{}
	}

	envelope := notificationEnvelope{
		Type:      "Notification",
		MessageID: utility.RandomString(),
		TopicArn:  topic.ARN,
		Message:   utility.FromStringPtr(in.Message),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling notification envelope")
	}

	for _, sub := range topic.Subscriptions {
		if sub.Protocol != "sqs" {
			continue
		}
		q := findQueueByARN(sub.Endpoint)
		if q == nil {
			continue
		}
		q.Messages = append(q.Messages, StoredMessage{
			ID:            envelope.MessageID,
			Body:          string(body),
			ReceiptHandle: utility.RandomString(),
			Sent:          time.Now(),
		})
	}

	return &sns.PublishOutput{
		MessageId: utility.ToStringPtr(envelope.MessageID),
	}, nil
}

// Unsubscribe saves the input and removes the subscription from its topic
// in the global topic service cache. The mock output can be customized.
func (c *SNSClient) Unsubscribe(ctx context.Context, in *sns.UnsubscribeInput) (*sns.UnsubscribeOutput, error) {
	c.UnsubscribeInput = in

	if c.UnsubscribeOutput != nil || c.UnsubscribeError != nil {
		return c.UnsubscribeOutput, c.UnsubscribeError
	}

	arn := utility.FromStringPtr(in.SubscriptionArn)
	for _, topic := range GlobalTopicService {
		if _, ok := topic.Subscriptions[arn]; ok {
			delete(topic.Subscriptions, arn)
			return &sns.UnsubscribeOutput{}, nil
		}
	}

	return nil, &types.NotFoundException{}
}

// DeleteTopic saves the input and deletes the topic from the global topic
// service cache. The mock output can be customized.
func (c *SNSClient) DeleteTopic(ctx context.Context, in *sns.DeleteTopicInput) (*sns.DeleteTopicOutput, error) {
	c.DeleteTopicInput = in

	if c.DeleteTopicOutput != nil || c.DeleteTopicError != nil {
		return c.DeleteTopicOutput, c.DeleteTopicError
	}

	arn := utility.FromStringPtr(in.TopicArn)
	if _, ok := GlobalTopicService[arn]; !ok {
		return nil, &types.NotFoundException{}
	}

	delete(GlobalTopicService, arn)

	return &sns.DeleteTopicOutput{}, nil
}

// Close closes the mock client. The mock output can be customized. By
// default, it is a no-op that returns no error.
func (c *SNSClient) Close(ctx context.Context) error {
	return c.CloseError
}
