package analytics

import "errors"

// The core error taxonomy. Everything here is a local, recoverable condition:
// callers are expected to map these to "insufficient data" style responses
// rather than treat them as faults.
var (
	// ErrInsufficientData means fewer than the minimum required points for an
	// operation (e.g. <2 observations after normalization, no extremes for
	// trendline fitting).
	ErrInsufficientData = errors.New("analytics: insufficient data")

	// ErrInvalidInput means malformed input: out-of-order dates, non-positive
	// parameters, end before start.
	ErrInvalidInput = errors.New("analytics: invalid input")

	// ErrDegenerateFit means a regression input collapsed to a single x-value,
	// leaving the slope undefined.
	ErrDegenerateFit = errors.New("analytics: degenerate fit")
)
