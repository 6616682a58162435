package sqs

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"github.com/verdant-ci/matcha"
)

// QueueOptions configure a QueueProbe.
type QueueOptions struct {
	// Queue is the name of the queue the probe sends its message through.
	Queue string
	// Body is the message payload to send and receive.
	Body string
}

// Validate checks that the required fields are given and sets defaults
// for unspecified options.
func (o *QueueOptions) Validate() error {
	catcher := grip.NewBasicCatcher()
	catcher.NewWhen(o.Queue == "", "must provide a queue name")

	if catcher.HasErrors() {
		return catcher.Resolve()
	}

	if o.Body == "" {
		o.Body = "hello from matcha"
	}

	return nil
}

// QueueProbe verifies that the emulator can create a queue and deliver a
// message sent through it.
type QueueProbe struct {
	client matcha.SQSClient
	opts   QueueOptions
}

// NewQueueProbe creates a probe that verifies queue delivery through the
// given client.
func NewQueueProbe(c matcha.SQSClient, opts QueueOptions) (*QueueProbe, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}

	return &QueueProbe{client: c, opts: opts}, nil
}

// Name returns the probe's identifier.
func (p *QueueProbe) Name() string {
	return "sqs-queue-delivery"
}

// Check creates the queue, sends a message, receives it back, verifies
// the payload, and deletes the received message so that re-runs start
// from an empty queue.
func (p *QueueProbe) Check(ctx context.Context) error {
	createOut, err := p.client.CreateQueue(ctx, &sqs.CreateQueueInput{
		QueueName: utility.ToStringPtr(p.opts.Queue),
	})
	if err != nil {
		return errors.Wrapf(err, "creating queue '%s'", p.opts.Queue)
	}
	queueURL := utility.FromStringPtr(createOut.QueueUrl)
	if queueURL == "" {
		return errors.New("queue was created without a URL")
	}

	if _, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    utility.ToStringPtr(queueURL),
		MessageBody: utility.ToStringPtr(p.opts.Body),
	}); err != nil {
		return errors.Wrap(err, "sending message")
	}

	receiveOut, err := p.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            utility.ToStringPtr(queueURL),
		MaxNumberOfMessages: 1,
	})
	if err != nil {
		return errors.Wrap(err, "receiving message")
	}
	if len(receiveOut.Messages) != 1 {
		return errors.Errorf("expected to receive exactly 1 message but received %d", len(receiveOut.Messages))
	}

	received := receiveOut.Messages[0]
	if utility.FromStringPtr(received.Body) != p.opts.Body {
		return errors.Errorf("message round trip mismatch: sent '%s' but received '%s'", p.opts.Body, utility.FromStringPtr(received.Body))
	}

	if _, err := p.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      utility.ToStringPtr(queueURL),
		ReceiptHandle: received.ReceiptHandle,
	}); err != nil {
		return errors.Wrap(err, "deleting received message")
	}

	return nil
}
