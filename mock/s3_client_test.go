package mock

import (
	"context"
	"testing"
	"time"

	"github.com/verdant-ci/matcha/internal/testcase"
)

func TestS3Client(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for tName, tCase := range testcase.S3ClientTests() {
		t.Run(tName, func(t *testing.T) {
			tctx, tcancel := context.WithTimeout(ctx, 30*time.Second)
			defer tcancel()

			ResetGlobalObjectStore()

			c := &S3Client{}
			defer c.Close(tctx)

			tCase(tctx, t, c)
		})
	}
}
