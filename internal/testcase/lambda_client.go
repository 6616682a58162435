package testcase

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/evergreen-ci/utility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdant-ci/matcha"
	"github.com/verdant-ci/matcha/internal/testutil"
)

// LambdaClientTestCase represents a test case for a matcha.LambdaClient.
type LambdaClientTestCase func(ctx context.Context, t *testing.T, c matcha.LambdaClient)

// LambdaClientTests returns common test cases that a matcha.LambdaClient
// should support.
func LambdaClientTests() map[string]LambdaClientTestCase {
	makeFunction := func(ctx context.Context, t *testing.T, c matcha.LambdaClient, name string) {
		out, err := c.CreateFunction(ctx, &lambda.CreateFunctionInput{
			FunctionName: utility.ToStringPtr(name),
			Role:         utility.ToStringPtr("arn:aws:iam::000000000000:role/lambda-role"),
			Handler:      utility.ToStringPtr("index.handler"),
			Runtime:      types.RuntimePython311,
			Code: &types.FunctionCode{
				ZipFile: []byte("stub-code"),
			},
			Timeout: aws.Int32(10),
		})
		require.NoError(t, err)
		require.NotZero(t, out)
	}

	return map[string]LambdaClientTestCase{
		"CreateAndGetFunctionSucceed": func(ctx context.Context, t *testing.T, c matcha.LambdaClient) {
			name := testutil.NewResourceName(t)
			makeFunction(ctx, t, c, name)

			defer cleanupFunction(ctx, t, c, name)

			out, err := c.GetFunction(ctx, &lambda.GetFunctionInput{
				FunctionName: utility.ToStringPtr(name),
			})
			require.NoError(t, err)
			require.NotZero(t, out)
			require.NotZero(t, out.Configuration)
			assert.Equal(t, name, utility.FromStringPtr(out.Configuration.FunctionName))
		},
		"CreateFunctionFailsWithConflictForDuplicateName": func(ctx context.Context, t *testing.T, c matcha.LambdaClient) {
			name := testutil.NewResourceName(t)
			makeFunction(ctx, t, c, name)

			defer cleanupFunction(ctx, t, c, name)

			out, err := c.CreateFunction(ctx, &lambda.CreateFunctionInput{
				FunctionName: utility.ToStringPtr(name),
				Role:         utility.ToStringPtr("arn:aws:iam::000000000000:role/lambda-role"),
				Handler:      utility.ToStringPtr("index.handler"),
				Runtime:      types.RuntimePython311,
				Code: &types.FunctionCode{
					ZipFile: []byte("stub-code"),
				},
			})
			require.Error(t, err)
			assert.True(t, matcha.IsFunctionConflictError(err))
			assert.Zero(t, out)
		},
		"GetFunctionFailsWithNonexistentFunction": func(ctx context.Context, t *testing.T, c matcha.LambdaClient) {
			out, err := c.GetFunction(ctx, &lambda.GetFunctionInput{
				FunctionName: utility.ToStringPtr(testutil.NewResourceName(t)),
			})
			assert.Error(t, err)
			assert.Zero(t, out)
		},
		"DeleteFunctionFailsWithNonexistentFunction": func(ctx context.Context, t *testing.T, c matcha.LambdaClient) {
			out, err := c.DeleteFunction(ctx, &lambda.DeleteFunctionInput{
				FunctionName: utility.ToStringPtr(testutil.NewResourceName(t)),
			})
			assert.Error(t, err)
			assert.Zero(t, out)
		},
	}
}

func cleanupFunction(ctx context.Context, t *testing.T, c matcha.LambdaClient, name string) {
	_, err := c.DeleteFunction(ctx, &lambda.DeleteFunctionInput{
		FunctionName: utility.ToStringPtr(name),
	})
	assert.NoError(t, err)
}
