package mock

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/evergreen-ci/utility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdant-ci/matcha/internal/testcase"
)

func TestLambdaClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for tName, tCase := range testcase.LambdaClientTests() {
		t.Run(tName, func(t *testing.T) {
			tctx, tcancel := context.WithTimeout(ctx, 30*time.Second)
			defer tcancel()

			ResetGlobalFunctionRegistry()

			c := &LambdaClient{}
			defer c.Close(tctx)

			tCase(tctx, t, c)
		})
	}

	// The fake function runtime echoes payloads instead of running real
	// code, so this behavior is only tested against the mock.
	t.Run("InvokeEchoesPayload", func(t *testing.T) {
		tctx, tcancel := context.WithTimeout(ctx, 30*time.Second)
		defer tcancel()

		ResetGlobalFunctionRegistry()

		c := &LambdaClient{}
		defer c.Close(tctx)

		_, err := c.CreateFunction(tctx, &lambda.CreateFunctionInput{
			FunctionName: utility.ToStringPtr("echo-fn"),
			Role:         utility.ToStringPtr("arn:aws:iam::000000000000:role/lambda-role"),
			Handler:      utility.ToStringPtr("index.handler"),
			Runtime:      types.RuntimePython311,
			Code: &types.FunctionCode{
				ZipFile: []byte("stub-code"),
			},
		})
		require.NoError(t, err)

		out, err := c.Invoke(tctx, &lambda.InvokeInput{
			FunctionName: utility.ToStringPtr("echo-fn"),
			Payload:      []byte(`{"hello":"matcha"}`),
		})
		require.NoError(t, err)
		require.NotZero(t, out)
		assert.EqualValues(t, 200, out.StatusCode)
		assert.JSONEq(t, `{"hello":"matcha"}`, string(out.Payload))
	})

	t.Run("InvokeFailsWithNonexistentFunction", func(t *testing.T) {
		tctx, tcancel := context.WithTimeout(ctx, 30*time.Second)
		defer tcancel()

		ResetGlobalFunctionRegistry()

		c := &LambdaClient{}
		defer c.Close(tctx)

		out, err := c.Invoke(tctx, &lambda.InvokeInput{
			FunctionName: utility.ToStringPtr("nonexistent-fn"),
		})
		assert.Error(t, err)
		assert.Zero(t, out)
	})
}
