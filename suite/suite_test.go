package suite

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProbe is a controllable probe for exercising suite behavior.
type stubProbe struct {
	name  string
	err   error
	runs  int
	block bool
}

func (p *stubProbe) Name() string { return p.name }

func (p *stubProbe) Check(ctx context.Context) error {
	p.runs++
	if p.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return p.err
}

func TestOptions(t *testing.T) {
	t.Run("SetsDefaultProbeTimeout", func(t *testing.T) {
		opts := Options{}
		require.NoError(t, opts.Validate())
		assert.Equal(t, 30*time.Second, opts.ProbeTimeout)
	})
	t.Run("KeepsGivenProbeTimeout", func(t *testing.T) {
		opts := Options{ProbeTimeout: time.Minute}
		require.NoError(t, opts.Validate())
		assert.Equal(t, time.Minute, opts.ProbeTimeout)
	})
}

func TestSuiteRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t.Run("RunsProbesInOrder", func(t *testing.T) {
		first := &stubProbe{name: "first"}
		second := &stubProbe{name: "second"}

		s, err := New(Options{}, first, second)
		require.NoError(t, err)

		report := s.Run(ctx)
		require.NotZero(t, report)
		require.Len(t, report.Results, 2)
		assert.Equal(t, "first", report.Results[0].Name)
		assert.Equal(t, "second", report.Results[1].Name)
		assert.True(t, report.Passed())
		assert.Equal(t, 1, first.runs)
		assert.Equal(t, 1, second.runs)
	})
	t.Run("ContinuesAfterFailedProbe", func(t *testing.T) {
		failing := &stubProbe{name: "failing", err: errors.New("expectation failed")}
		passing := &stubProbe{name: "passing"}

		s, err := New(Options{}, failing, passing)
		require.NoError(t, err)

		report := s.Run(ctx)
		require.Len(t, report.Results, 2)
		assert.False(t, report.Results[0].Passed)
		assert.Error(t, report.Results[0].Err)
		assert.True(t, report.Results[1].Passed)
		assert.Equal(t, 1, passing.runs)

		assert.False(t, report.Passed())
		require.Len(t, report.Failures(), 1)
		assert.Equal(t, "failing", report.Failures()[0].Name)
	})
	t.Run("ReturnsEmptyReportWithoutProbes", func(t *testing.T) {
		s, err := New(Options{})
		require.NoError(t, err)

		report := s.Run(ctx)
		require.NotZero(t, report)
		assert.Empty(t, report.Results)
		assert.True(t, report.Passed())
	})
	t.Run("TimesOutSlowProbe", func(t *testing.T) {
		slow := &stubProbe{name: "slow", block: true}
		after := &stubProbe{name: "after"}

		s, err := New(Options{ProbeTimeout: 10 * time.Millisecond}, slow, after)
		require.NoError(t, err)

		report := s.Run(ctx)
		require.Len(t, report.Results, 2)
		assert.False(t, report.Results[0].Passed)
		assert.True(t, report.Results[1].Passed)
	})
	t.Run("RecordsRemainingProbesWhenCancelled", func(t *testing.T) {
		cctx, ccancel := context.WithCancel(ctx)
		ccancel()

		p := &stubProbe{name: "never-ran"}

		s, err := New(Options{}, p)
		require.NoError(t, err)

		report := s.Run(cctx)
		require.Len(t, report.Results, 1)
		assert.False(t, report.Results[0].Passed)
		assert.Error(t, report.Results[0].Err)
		assert.Zero(t, p.runs)
	})
}
