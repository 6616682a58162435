package matcha

import (
	"context"
	"time"
)

// Probe represents a single end-to-end verification of one emulator
// service surface. Probes should be safe to run repeatedly against the
// same emulator without manual cleanup in between.
type Probe interface {
	// Name returns the human-readable identifier for the probe.
	Name() string
	// Check exercises the service and returns an error describing the
	// first failed expectation.
	Check(ctx context.Context) error
}

// ProbeResult contains the outcome of running a single probe.
type ProbeResult struct {
	// Name is the name of the probe that produced this result.
	Name string
	// Passed indicates whether the probe's expectations all held.
	Passed bool
	// Runtime is how long the probe took to run.
	Runtime time.Duration
	// Err is the first failed expectation when the probe did not pass.
	Err error
}

// Report aggregates the results of running an ordered set of probes.
type Report struct {
	// Started is when the first probe began running.
	Started time.Time
	// Results contains one entry per probe in the order the probes ran.
	Results []ProbeResult
}

// Passed returns whether every probe in the report passed.
func (r *Report) Passed() bool {
	for _, res := range r.Results {
		if !res.Passed {
			return false
		}
	}
	return true
}

// Failures returns the results for probes that did not pass.
func (r *Report) Failures() []ProbeResult {
	var failed []ProbeResult
	for _, res := range r.Results {
		if !res.Passed {
			failed = append(failed, res)
		}
	}
	return failed
}
