package sns

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/evergreen-ci/utility"
	"github.com/goccy/go-json"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"github.com/verdant-ci/matcha"
)

// FanoutOptions configure a FanoutProbe.
type FanoutOptions struct {
	// Topic is the name of the topic the probe publishes through.
	Topic string
	// Queue is the name of the queue subscribed to the topic.
	Queue string
	// Message is the payload to publish.
	Message string
	// PollRetryOpts bound how long the probe polls the subscribed queue
	// for the published notification before giving up.
	PollRetryOpts *utility.RetryOptions
}

// Validate checks that the required fields are given and sets defaults
// for unspecified options.
func (o *FanoutOptions) Validate() error {
	catcher := grip.NewBasicCatcher()
	catcher.NewWhen(o.Topic == "", "must provide a topic name")
	catcher.NewWhen(o.Queue == "", "must provide a queue name")

	if catcher.HasErrors() {
		return catcher.Resolve()
	}

	if o.Message == "" {
		o.Message = "hello from matcha"
	}
	if o.PollRetryOpts == nil {
		o.PollRetryOpts = &utility.RetryOptions{
			MaxAttempts: 10,
			MinDelay:    100 * time.Millisecond,
			MaxDelay:    time.Second,
		}
	}
	o.PollRetryOpts.Validate()

	return nil
}

// notification is the envelope that SNS-compatible endpoints wrap
// published messages in before delivering them to subscribed queues.
type notification struct {
	Type      string `json:"Type"`
	MessageID string `json:"MessageId"`
	TopicArn  string `json:"TopicArn"`
	Message   string `json:"Message"`
}

// FanoutProbe verifies that a message published to a topic is fanned out
// to a queue subscribed to it.
type FanoutProbe struct {
	client    matcha.SNSClient
	sqsClient matcha.SQSClient
	opts      FanoutOptions
}

// NewFanoutProbe creates a probe that verifies pub/sub fan-out from the
// topic client into the queue client.
func NewFanoutProbe(c matcha.SNSClient, sqsClient matcha.SQSClient, opts FanoutOptions) (*FanoutProbe, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}

	return &FanoutProbe{client: c, sqsClient: sqsClient, opts: opts}, nil
}

// Name returns the probe's identifier.
func (p *FanoutProbe) Name() string {
	return "sns-fanout-to-sqs"
}

// Check creates the topic and the subscriber queue, subscribes the queue
// to the topic, publishes a message, and polls the queue with bounded
// backoff until the notification arrives. Delivery is asynchronous, so
// the poll budget rather than a fixed sleep decides how long to wait.
func (p *FanoutProbe) Check(ctx context.Context) error {
	topicOut, err := p.client.CreateTopic(ctx, &sns.CreateTopicInput{
		Name: utility.ToStringPtr(p.opts.Topic),
	})
	if err != nil {
		return errors.Wrapf(err, "creating topic '%s'", p.opts.Topic)
	}
	topicARN := utility.FromStringPtr(topicOut.TopicArn)
	if topicARN == "" {
		return errors.New("topic was created without an ARN")
	}

	queueOut, err := p.sqsClient.CreateQueue(ctx, &sqs.CreateQueueInput{
		QueueName: utility.ToStringPtr(p.opts.Queue),
	})
	if err != nil {
		return errors.Wrapf(err, "creating subscriber queue '%s'", p.opts.Queue)
	}
	queueURL := utility.FromStringPtr(queueOut.QueueUrl)

	attrsOut, err := p.sqsClient.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl:       utility.ToStringPtr(queueURL),
		AttributeNames: []sqstypes.QueueAttributeName{sqstypes.QueueAttributeNameQueueArn},
	})
	if err != nil {
		return errors.Wrap(err, "getting subscriber queue ARN")
	}
	queueARN := attrsOut.Attributes[string(sqstypes.QueueAttributeNameQueueArn)]
	if queueARN == "" {
		return errors.Errorf("queue '%s' has no ARN attribute", p.opts.Queue)
	}

	if _, err := p.client.Subscribe(ctx, &sns.SubscribeInput{
		TopicArn: utility.ToStringPtr(topicARN),
		Protocol: utility.ToStringPtr("sqs"),
		Endpoint: utility.ToStringPtr(queueARN),
	}); err != nil {
		return errors.Wrap(err, "subscribing queue to topic")
	}

	if _, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: utility.ToStringPtr(topicARN),
		Message:  utility.ToStringPtr(p.opts.Message),
	}); err != nil {
		return errors.Wrap(err, "publishing message")
	}

	return errors.Wrap(p.pollForNotification(ctx, queueURL, topicARN), "waiting for notification delivery")
}

func (p *FanoutProbe) pollForNotification(ctx context.Context, queueURL, topicARN string) error {
	return utility.Retry(ctx, func() (bool, error) {
		out, err := p.sqsClient.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            utility.ToStringPtr(queueURL),
			MaxNumberOfMessages: 1,
		})
		if err != nil {
			return false, errors.Wrap(err, "receiving from subscriber queue")
		}
		if len(out.Messages) == 0 {
			return true, errors.New("no notification delivered yet")
		}

		received := out.Messages[0]
		body := utility.FromStringPtr(received.Body)

		var envelope notification
		if err := json.Unmarshal([]byte(body), &envelope); err != nil {
			return false, errors.Wrap(err, "parsing notification envelope")
		}
		if envelope.Message != p.opts.Message {
			return false, errors.Errorf("notification round trip mismatch: published '%s' but delivered '%s'", p.opts.Message, envelope.Message)
		}
		if envelope.TopicArn != topicARN {
			return false, errors.Errorf("notification delivered from unexpected topic '%s'", envelope.TopicArn)
		}

		if _, err := p.sqsClient.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      utility.ToStringPtr(queueURL),
			ReceiptHandle: received.ReceiptHandle,
		}); err != nil {
			return false, errors.Wrap(err, "deleting delivered notification")
		}

		return false, nil
	}, *p.opts.PollRetryOpts)
}
