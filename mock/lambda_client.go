package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/evergreen-ci/utility"
	"github.com/pkg/errors"
	"github.com/verdant-ci/matcha"
)

// StoredFunction is a representation of a registered function kept in the
// global function registry cache.
type StoredFunction struct {
	Name    string
	ARN     string
	Runtime types.Runtime
	Role    string
	Handler string
	Timeout int32
	Code    []byte
	Created time.Time
}

func newStoredFunction(in *lambda.CreateFunctionInput, ts time.Time) StoredFunction {
	name := utility.FromStringPtr(in.FunctionName)
	f := StoredFunction{
		Name:    name,
		ARN:     fmt.Sprintf("arn:aws:lambda:us-east-1:000000000000:function:%s", name),
		Runtime: in.Runtime,
		Role:    utility.FromStringPtr(in.Role),
		Handler: utility.FromStringPtr(in.Handler),
		Timeout: aws.ToInt32(in.Timeout),
		Created: ts,
	}
	if in.Code != nil {
		f.Code = in.Code.ZipFile
	}
	return f
}

func exportFunctionConfiguration(f StoredFunction) *types.FunctionConfiguration {
	return &types.FunctionConfiguration{
		FunctionName: utility.ToStringPtr(f.Name),
		FunctionArn:  utility.ToStringPtr(f.ARN),
		Runtime:      f.Runtime,
		Role:         utility.ToStringPtr(f.Role),
		Handler:      utility.ToStringPtr(f.Handler),
		Timeout:      aws.Int32(f.Timeout),
	}
}

// GlobalFunctionRegistry is a global storage cache that provides a
// simplified in-memory implementation of a function registration service.
// This can be used indirectly with the LambdaClient to access and modify
// functions, or used directly.
var GlobalFunctionRegistry map[string]StoredFunction

func init() {
	ResetGlobalFunctionRegistry()
}

// ResetGlobalFunctionRegistry resets the global fake function registry
// cache to an initialized but clean state.
func ResetGlobalFunctionRegistry() {
	GlobalFunctionRegistry = map[string]StoredFunction{}
}

// LambdaClient provides a mock implementation of a matcha.LambdaClient.
// This makes it possible to introspect on inputs to the client and
// control the client's output. It provides some default implementations
// where possible. By default, it will issue the API calls to the fake
// GlobalFunctionRegistry.
type LambdaClient struct {
	CreateFunctionInput  *lambda.CreateFunctionInput
	CreateFunctionOutput *lambda.CreateFunctionOutput
	CreateFunctionError  error

	GetFunctionInput  *lambda.GetFunctionInput
	GetFunctionOutput *lambda.GetFunctionOutput
	GetFunctionError  error

	InvokeInput  *lambda.InvokeInput
	InvokeOutput *lambda.InvokeOutput
	InvokeError  error

	DeleteFunctionInput  *lambda.DeleteFunctionInput
	DeleteFunctionOutput *lambda.DeleteFunctionOutput
	DeleteFunctionError  error

	CloseError error
}

// CreateFunction saves the input and registers the function in the global
// function registry cache. Registering a name that is already taken
// returns a matcha.FunctionConflictError. The mock output can be
// customized.
func (c *LambdaClient) CreateFunction(ctx context.Context, in *lambda.CreateFunctionInput) (*lambda.CreateFunctionOutput, error) {
	c.CreateFunctionInput = in

	if c.CreateFunctionOutput != nil || c.CreateFunctionError != nil {
		return c.CreateFunctionOutput, c.CreateFunctionError
	}

	name := utility.FromStringPtr(in.FunctionName)
	if name == "" {
		return nil, errors.New("missing function name")
	}
	if _, ok := GlobalFunctionRegistry[name]; ok {
		return nil, matcha.NewFunctionConflictError(name)
	}

	f := newStoredFunction(in, time.Now())
	GlobalFunctionRegistry[name] = f

	return &lambda.CreateFunctionOutput{
		FunctionName: utility.ToStringPtr(f.Name),
		FunctionArn:  utility.ToStringPtr(f.ARN),
		Runtime:      f.Runtime,
		Role:         utility.ToStringPtr(f.Role),
		Handler:      utility.ToStringPtr(f.Handler),
		Timeout:      aws.Int32(f.Timeout),
	}, nil
}

// GetFunction saves the input and returns the function from the global
// function registry cache. The mock output can be customized.
func (c *LambdaClient) GetFunction(ctx context.Context, in *lambda.GetFunctionInput) (*lambda.GetFunctionOutput, error) {
	c.GetFunctionInput = in

	if c.GetFunctionOutput != nil || c.GetFunctionError != nil {
		return c.GetFunctionOutput, c.GetFunctionError
	}

	f, ok := GlobalFunctionRegistry[utility.FromStringPtr(in.FunctionName)]
	if !ok {
		return nil, &types.ResourceNotFoundException{}
	}

	return &lambda.GetFunctionOutput{
		Configuration: exportFunctionConfiguration(f),
	}, nil
}

// Invoke saves the input and echoes the payload back from the fake
// function, which stands in for running real code. The mock output can be
// customized.
func (c *LambdaClient) Invoke(ctx context.Context, in *lambda.InvokeInput) (*lambda.InvokeOutput, error) {
	c.InvokeInput = in

	if c.InvokeOutput != nil || c.InvokeError != nil {
		return c.InvokeOutput, c.InvokeError
	}

	if _, ok := GlobalFunctionRegistry[utility.FromStringPtr(in.FunctionName)]; !ok {
		return nil, &types.ResourceNotFoundException{}
	}

	return &lambda.InvokeOutput{
		StatusCode: 200,
		Payload:    in.Payload,
	}, nil
}

// DeleteFunction saves the input and deletes the function from the global
// function registry cache. The mock output can be customized.
func (c *LambdaClient) DeleteFunction(ctx context.Context, in *lambda.DeleteFunctionInput) (*lambda.DeleteFunctionOutput, error) {
	c.DeleteFunctionInput = in

	if c.DeleteFunctionOutput != nil || c.DeleteFunctionError != nil {
		return c.DeleteFunctionOutput, c.DeleteFunctionError
	}

	name := utility.FromStringPtr(in.FunctionName)
	if _, ok := GlobalFunctionRegistry[name]; !ok {
		return nil, &types.ResourceNotFoundException{}
	}

	delete(GlobalFunctionRegistry, name)

	return &lambda.DeleteFunctionOutput{}, nil
}

// Close closes the mock client. The mock output can be customized. By
// default, it is a no-op that returns no error.
func (c *LambdaClient) Close(ctx context.Context) error {
	return c.CloseError
}
