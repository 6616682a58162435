package matcha

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/lambda"
)

// LambdaClient provides a common interface to interact with a
// Lambda-compatible function registration endpoint and its mock
// implementation for testing. Implementations must handle retrying and
// backoff.
type LambdaClient interface {
	// CreateFunction registers a new function. Registering a function
	// whose name is already taken returns a FunctionConflictError.
	CreateFunction(ctx context.Context, in *lambda.CreateFunctionInput) (*lambda.CreateFunctionOutput, error)
	// GetFunction gets information about an existing function.
	GetFunction(ctx context.Context, in *lambda.GetFunctionInput) (*lambda.GetFunctionOutput, error)
	// Invoke invokes an existing function with the given payload.
	Invoke(ctx context.Context, in *lambda.InvokeInput) (*lambda.InvokeOutput, error)
	// DeleteFunction deletes an existing function.
	DeleteFunction(ctx context.Context, in *lambda.DeleteFunctionInput) (*lambda.DeleteFunctionOutput, error)
	// Close closes the client and cleans up its resources. Implementations
	// should ensure that this is idempotent.
	Close(ctx context.Context) error
}
