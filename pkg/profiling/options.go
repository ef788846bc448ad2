// Package profiling produces allocation snapshots: either by running a
// workload under the runtime's allocation sampler, or by loading an
// existing heap profile in pprof format.
package profiling

import (
	apperrors "github.com/allocview/pkg/errors"
)

// DefaultSampleRate is the fraction of allocations captured when no
// rate is configured.
const DefaultSampleRate = 0.0001

// Options control a tracked run. The zero value is not valid; use
// DefaultOptions as the base.
type Options struct {
	// SampleRate is the approximate fraction of allocations to capture,
	// in (0, 1]. 1 captures every allocation.
	SampleRate float64
	// PageSize overrides the viewer's page size; 0 keeps the configured
	// default.
	PageSize int
	// Warmup runs the workload once before sampling is enabled, so
	// one-time initialization allocations are not recorded.
	Warmup bool
}

// DefaultOptions returns the default tracking options.
func DefaultOptions() Options {
	return Options{SampleRate: DefaultSampleRate}
}

// Validate checks the options before any profiling begins.
func (o Options) Validate() error {
	if o.SampleRate <= 0 || o.SampleRate > 1 {
		return apperrors.Newf(apperrors.CodeInvalidOption,
			"sample rate must be in (0, 1], got %g", o.SampleRate)
	}
	if o.PageSize < 0 {
		return apperrors.Newf(apperrors.CodeInvalidOption,
			"page size must be non-negative, got %d", o.PageSize)
	}
	return nil
}
