package lambda

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdant-ci/matcha"
	"github.com/verdant-ci/matcha/internal/testcase"
	"github.com/verdant-ci/matcha/internal/testutil"
)

func TestBasicLambdaClient(t *testing.T) {
	assert.Implements(t, (*matcha.LambdaClient)(nil), &BasicLambdaClient{})

	testutil.SkipUnlessEmulator(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for tName, tCase := range testcase.LambdaClientTests() {
		t.Run(tName, func(t *testing.T) {
			tctx, tcancel := context.WithTimeout(ctx, time.Minute)
			defer tcancel()

			c, err := NewBasicLambdaClient(testutil.EmulatorClientOptions())
			require.NoError(t, err)
			require.NotNil(t, c)

			defer func() {
				assert.NoError(t, c.Close(tctx))
			}()

			tCase(tctx, t, c)
		})
	}
}
