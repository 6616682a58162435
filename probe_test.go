package matcha

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestReport(t *testing.T) {
	t.Run("PassesWithNoResults", func(t *testing.T) {
		r := Report{Started: time.Now()}
		assert.True(t, r.Passed())
		assert.Empty(t, r.Failures())
	})
	t.Run("PassesWhenAllProbesPass", func(t *testing.T) {
		r := Report{
			Results: []ProbeResult{
				{Name: "first", Passed: true},
				{Name: "second", Passed: true},
			},
		}
		assert.True(t, r.Passed())
		assert.Empty(t, r.Failures())
	})
	t.Run("FailsWhenAnyProbeFails", func(t *testing.T) {
		r := Report{
			Results: []ProbeResult{
				{Name: "first", Passed: true},
				{Name: "second", Passed: false, Err: errors.New("expectation failed")},
			},
		}
		assert.False(t, r.Passed())

		failures := r.Failures()
		assert.Len(t, failures, 1)
		assert.Equal(t, "second", failures[0].Name)
	})
}
