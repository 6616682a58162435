package lambda

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/verdant-ci/matcha"
	"github.com/verdant-ci/matcha/event"
)

// RegistrationOptions configure a RegistrationProbe.
type RegistrationOptions struct {
	// Function is the name of the function the probe registers.
	Function string
	// Role is the execution role ARN passed with the registration.
	// Emulators accept any well-formed ARN.
	Role string
	// Handler is the function handler passed with the registration.
	Handler string
	// Runtime is the declared function runtime.
	Runtime types.Runtime
	// Region is the region recorded in the trigger event the probe
	// validates.
	Region string
	// Bucket and Key identify the object whose creation the trigger event
	// describes. They should match the objects written by the object
	// storage probe so the event describes real emulator state.
	Bucket string
	Key    string
}

// Validate checks that the required fields are given and sets defaults
// for unspecified options.
func (o *RegistrationOptions) Validate() error {
	catcher := grip.NewBasicCatcher()
	catcher.NewWhen(o.Function == "", "must provide a function name")
	catcher.NewWhen(o.Bucket == "", "must provide the trigger event's bucket name")

	if catcher.HasErrors() {
		return catcher.Resolve()
	}

	if o.Role == "" {
		o.Role = "arn:aws:iam::000000000000:role/lambda-role"
	}
	if o.Handler == "" {
		o.Handler = "index.handler"
	}
	if o.Runtime == "" {
		o.Runtime = types.RuntimePython311
	}
	if o.Region == "" {
		o.Region = "us-east-1"
	}
	if o.Key == "" {
		o.Key = "round-trip.txt"
	}

	return nil
}

// RegistrationProbe verifies that the emulator accepts a function
// registration and that a well-formed object-created trigger event can be
// constructed for it. Function execution requires container support in
// the emulator and is deliberately out of scope; the registration uses a
// stub code payload.
type RegistrationProbe struct {
	client matcha.LambdaClient
	opts   RegistrationOptions
}

// NewRegistrationProbe creates a probe that verifies function
// registration through the given client.
func NewRegistrationProbe(c matcha.LambdaClient, opts RegistrationOptions) (*RegistrationProbe, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}

	return &RegistrationProbe{client: c, opts: opts}, nil
}

// Name returns the probe's identifier.
func (p *RegistrationProbe) Name() string {
	return "lambda-registration"
}

// Check registers the function and validates the trigger event shape. A
// function left over from a previous run is tolerated; any other
// registration failure fails the probe.
func (p *RegistrationProbe) Check(ctx context.Context) error {
	if _, err := p.client.CreateFunction(ctx, &lambda.CreateFunctionInput{
		FunctionName: utility.ToStringPtr(p.opts.Function),
		Runtime:      p.opts.Runtime,
		Role:         utility.ToStringPtr(p.opts.Role),
		Handler:      utility.ToStringPtr(p.opts.Handler),
		Code: &types.FunctionCode{
			ZipFile: []byte("stub-code"),
		},
		Timeout: aws.Int32(10),
	}); err != nil {
		if !matcha.IsFunctionConflictError(err) {
			return errors.Wrapf(err, "registering function '%s'", p.opts.Function)
		}
		grip.Debug(message.Fields{
			"message":  "function is already registered, reusing it",
			"function": p.opts.Function,
		})
	}

	ev := event.NewObjectCreated(p.opts.Region, p.opts.Bucket, p.opts.Key, time.Now().UTC())
	if err := ev.Validate(); err != nil {
		return errors.Wrap(err, "validating trigger event")
	}

	payload, err := ev.Marshal()
	if err != nil {
		return errors.Wrap(err, "encoding trigger event")
	}

	decoded, err := event.UnmarshalS3Event(payload)
	if err != nil {
		return errors.Wrap(err, "decoding trigger event")
	}
	if decoded.Records[0].S3.Bucket.Name != p.opts.Bucket {
		return errors.Errorf("trigger event names bucket '%s' instead of '%s'", decoded.Records[0].S3.Bucket.Name, p.opts.Bucket)
	}
	if decoded.Records[0].S3.Object.Key != p.opts.Key {
		return errors.Errorf("trigger event names object '%s' instead of '%s'", decoded.Records[0].S3.Object.Key, p.opts.Key)
	}

	return nil
}
