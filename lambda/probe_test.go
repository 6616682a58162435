package lambda

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdant-ci/matcha"
	"github.com/verdant-ci/matcha/mock"
)

func TestRegistrationOptions(t *testing.T) {
	t.Run("FailsWithoutFunction", func(t *testing.T) {
		opts := RegistrationOptions{Bucket: "bucket"}
		assert.Error(t, opts.Validate())
	})
	t.Run("FailsWithoutBucket", func(t *testing.T) {
		opts := RegistrationOptions{Function: "fn"}
		assert.Error(t, opts.Validate())
	})
	t.Run("SetsDefaults", func(t *testing.T) {
		opts := RegistrationOptions{Function: "fn", Bucket: "bucket"}
		require.NoError(t, opts.Validate())
		assert.NotEmpty(t, opts.Role)
		assert.Equal(t, "index.handler", opts.Handler)
		assert.Equal(t, types.RuntimePython311, opts.Runtime)
		assert.Equal(t, "us-east-1", opts.Region)
		assert.Equal(t, "round-trip.txt", opts.Key)
	})
	t.Run("KeepsGivenValues", func(t *testing.T) {
		opts := RegistrationOptions{
			Function: "fn",
			Bucket:   "bucket",
			Handler:  "main.handle",
			Runtime:  types.RuntimeGo1x,
			Region:   "eu-west-1",
			Key:      "custom.txt",
		}
		require.NoError(t, opts.Validate())
		assert.Equal(t, "main.handle", opts.Handler)
		assert.Equal(t, types.RuntimeGo1x, opts.Runtime)
		assert.Equal(t, "eu-west-1", opts.Region)
		assert.Equal(t, "custom.txt", opts.Key)
	})
}

func TestRegistrationProbe(t *testing.T) {
	assert.Implements(t, (*matcha.Probe)(nil), &RegistrationProbe{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t.Run("FailsWithInvalidOptions", func(t *testing.T) {
		p, err := NewRegistrationProbe(&mock.LambdaClient{}, RegistrationOptions{})
		assert.Error(t, err)
		assert.Zero(t, p)
	})

	for tName, tCase := range map[string]func(ctx context.Context, t *testing.T, c *mock.LambdaClient){
		"SucceedsAndRegistersFunction": func(ctx context.Context, t *testing.T, c *mock.LambdaClient) {
			p, err := NewRegistrationProbe(c, RegistrationOptions{
				Function: "probe-fn",
				Bucket:   "probe-bucket",
			})
			require.NoError(t, err)

			require.NoError(t, p.Check(ctx))

			stored, ok := mock.GlobalFunctionRegistry["probe-fn"]
			require.True(t, ok)
			assert.Equal(t, "index.handler", stored.Handler)
		},
		"SucceedsWhenFunctionIsAlreadyRegistered": func(ctx context.Context, t *testing.T, c *mock.LambdaClient) {
			p, err := NewRegistrationProbe(c, RegistrationOptions{
				Function: "probe-fn",
				Bucket:   "probe-bucket",
			})
			require.NoError(t, err)

			require.NoError(t, p.Check(ctx))
			assert.NoError(t, p.Check(ctx))
		},
		"FailsWhenRegistrationFailsWithoutConflict": func(ctx context.Context, t *testing.T, c *mock.LambdaClient) {
			c.CreateFunctionError = errors.New("function service is down")

			p, err := NewRegistrationProbe(c, RegistrationOptions{
				Function: "probe-fn",
				Bucket:   "probe-bucket",
			})
			require.NoError(t, err)

			assert.Error(t, p.Check(ctx))
		},
	} {
		t.Run(tName, func(t *testing.T) {
			tctx, tcancel := context.WithTimeout(ctx, 10*time.Second)
			defer tcancel()

			mock.ResetGlobalFunctionRegistry()

			tCase(tctx, t, &mock.LambdaClient{})
		})
	}
}
