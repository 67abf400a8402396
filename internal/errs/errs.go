// Package errs defines the error kinds shared by the detector and
// correlator pipelines.
package errs

import "errors"

// Sentinel errors identifying the four failure kinds the pipelines
// distinguish. Wrap these with fmt.Errorf("%w: ...", ErrX) to attach detail
// and keep errors.Is working for callers.
var (
	ErrAlgorithmNotFound         = errors.New("algorithm not found")
	ErrRequiredParametersNotPassed = errors.New("required parameters not passed")
	ErrInvalidDataFormat         = errors.New("invalid data format")
	ErrNotEnoughDataPoints       = errors.New("not enough data points")
)
