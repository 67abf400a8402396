package detector

import (
	"fmt"

	"tsanomaly/internal/errs"
	"tsanomaly/internal/timeseries"
)

// Params carries the optional, algorithm-specific knobs a caller can pass
// through to Build. Every field is optional; zero means "let the algorithm
// derive its own default from the series length," except where an
// algorithm requires the field outright (documented per algorithm).
type Params struct {
	// bitmap_detector
	Precision        int
	ChunkSize        int
	LagWindowSize    int
	FutureWindowSize int

	// exp_avg_detector
	UseLagWindow bool

	// absolute_threshold
	LowerThreshold *float64
	UpperThreshold *float64

	// diff_percent_threshold, sign_test — Baseline is required by both;
	// UpperPercent/LowerPercent are exclusive for sign_test, either-or for
	// diff_percent_threshold.
	Baseline     *timeseries.TimeSeries
	UpperPercent *float64
	LowerPercent *float64

	// sign_test
	ScanWindow int
	Offset     float64
	Confidence float64
	Gap        int64
}

// Build constructs the named algorithm against series. name must be one of
// the registered algorithm names; anything else is ErrAlgorithmNotFound.
func Build(name string, series *timeseries.TimeSeries, p Params) (Algorithm, error) {
	switch name {
	case "bitmap_detector":
		return NewBitmapDetector(series, p.Precision, p.ChunkSize, p.LagWindowSize, p.FutureWindowSize)
	case "exp_avg_detector":
		return NewExpAvgDetector(series, p.UseLagWindow, p.LagWindowSize), nil
	case "derivative_detector":
		return NewDerivativeDetector(), nil
	case "default_detector":
		return NewDefaultDetector(), nil
	case "absolute_threshold":
		return NewAbsoluteThresholdDetector(p.LowerThreshold, p.UpperThreshold)
	case "diff_percent_threshold":
		return NewDiffPercentThresholdDetector(p.Baseline, p.UpperPercent, p.LowerPercent)
	case "sign_test":
		return NewSignTestDetector(p.Baseline, p.UpperPercent, p.LowerPercent, p.ScanWindow, p.Offset, p.Confidence, p.Gap)
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrAlgorithmNotFound, name)
	}
}

// DefaultAlgorithmName is the fallback used when a request doesn't name an
// algorithm, or when the requested one can't run on too few data points.
const DefaultAlgorithmName = "default_detector"

// DefaultRefineAlgorithmName is the algorithm the pipeline uses to refine
// an anomaly interval down to a single exact timestamp, unless the caller
// names a different one.
const DefaultRefineAlgorithmName = "exp_avg_detector"
