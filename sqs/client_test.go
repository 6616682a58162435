package sqs

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

func TestBasicSQSClient(t *testing.T) {
	assert.Implements(t, (*matcha.SQSClient)(nil), &BasicSQSClient{})

	testutil.SkipUnlessEmulator(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for tName, tCase := range testcase.SQSClientTests() {
		t.Run(tName, func(t *testing.T) {
			tctx, tcancel := context.WithTimeout(ctx, 30*time.Second)
			defer tcancel()

			c, err := NewBasicSQSClient(testutil.EmulatorClientOptions())
			require.NoError(t, err)
			require.NotNil(t, c)

			defer func() {
				assert.NoError(t, c.Close(tctx))
			}()

			tCase(tctx, t, c)
		})
	}
}
