package mock

import (
	"context"
	"testing"
	"time"

	"github.com/verdant-ci/matcha/internal/testcase"
)

func TestSQSClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for tName, tCase := range testcase.SQSClientTests() {
		t.Run(tName, func(t *testing.T) {
			tctx, tcancel := context.WithTimeout(ctx, 30*time.Second)
			defer tcancel()

			ResetGlobalQueueService()

			c := &SQSClient{}
			defer c.Close(tctx)

			tCase(tctx, t, c)
		})
	}
}
