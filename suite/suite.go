// Package suite runs ordered sets of probes against an emulator and
// aggregates their results.
package suite

import (
	"context"
	"time"

	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/verdant-ci/matcha"
)

// Options configure how a suite runs its probes.
type Options struct {
	// ProbeTimeout bounds how long each individual probe may run.
	ProbeTimeout time.Duration
}

// Validate sets defaults for unspecified options.
func (o *Options) Validate() error {
	if o.ProbeTimeout <= 0 {
		o.ProbeTimeout = 30 * time.Second
	}
	return nil
}

// Suite runs probes sequentially in the order they were given. A failed
// probe does not stop the suite, so one broken service does not mask the
// state of the others.
type Suite struct {
	opts   Options
	probes []matcha.Probe
}

// New creates a suite that runs the given probes in order.
func New(opts Options, probes ...matcha.Probe) (*Suite, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}

	return &Suite{opts: opts, probes: probes}, nil
}

// Run runs every probe and returns the aggregated report. It stops early
// only when the context is cancelled.
func (s *Suite) Run(ctx context.Context) *matcha.Report {
	report := &matcha.Report{Started: time.Now()}

	for _, p := range s.probes {
		if err := ctx.Err(); err != nil {
			report.Results = append(report.Results, matcha.ProbeResult{
				Name: p.Name(),
				Err:  errors.Wrap(err, "suite cancelled before probe ran"),
			})
			continue
		}

		start := time.Now()
		err := s.runProbe(ctx, p)
		res := matcha.ProbeResult{
			Name:    p.Name(),
			Passed:  err == nil,
			Runtime: time.Since(start),
			Err:     err,
		}
		report.Results = append(report.Results, res)

		grip.InfoWhen(res.Passed, message.Fields{
			"message": "probe passed",
			"probe":   res.Name,
			"runtime": res.Runtime.String(),
		})
		grip.ErrorWhen(!res.Passed, message.WrapError(err, message.Fields{
			"message": "probe failed",
			"probe":   res.Name,
			"runtime": res.Runtime.String(),
		}))
	}

	return report
}

func (s *Suite) runProbe(ctx context.Context, p matcha.Probe) error {
	tctx, tcancel := context.WithTimeout(ctx, s.opts.ProbeTimeout)
	defer tcancel()

	return p.Check(tctx)
}
