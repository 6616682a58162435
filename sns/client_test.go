package sns

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdant-ci/matcha"
	"github.com/verdant-ci/matcha/internal/testcase"
	"github.com/verdant-ci/matcha/internal/testutil"
	"github.com/verdant-ci/matcha/sqs"
)

func TestBasicSNSClient(t *testing.T) {
	assert.Implements(t, (*matcha.SNSClient)(nil), &BasicSNSClient{})

	testutil.SkipUnlessEmulator(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for tName, tCase := range testcase.SNSClientTests() {
		t.Run(tName, func(t *testing.T) {
			tctx, tcancel := context.WithTimeout(ctx, time.Minute)
			defer tcancel()

			c, err := NewBasicSNSClient(testutil.EmulatorClientOptions())
			require.NoError(t, err)
			require.NotNil(t, c)

			defer func() {
				assert.NoError(t, c.Close(tctx))
			}()

			sqsc, err := sqs.NewBasicSQSClient(testutil.EmulatorClientOptions())
			require.NoError(t, err)
			require.NotNil(t, sqsc)

			defer func() {
				assert.NoError(t, sqsc.Close(tctx))
			}()

			tCase(tctx, t, c, sqsc)
		})
	}
}
