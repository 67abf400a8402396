package detector

import (
	"fmt"

	"tsanomaly/internal/errs"
	"tsanomaly/internal/timeseries"
)

// AbsoluteThresholdDetector scores a point by how far outside [Lower,
// Upper] it falls. Points inside the bounds score 0. Unlike the other
// detectors it takes no defaults: callers must supply at least one bound
// explicitly.
type AbsoluteThresholdDetector struct {
	Lower *float64
	Upper *float64
}

// NewAbsoluteThresholdDetector requires at least one of lower, upper to be
// non-nil; a detector with neither bound configured can't score anything.
func NewAbsoluteThresholdDetector(lower, upper *float64) (*AbsoluteThresholdDetector, error) {
	if lower == nil && upper == nil {
		return nil, fmt.Errorf("%w: absolute_threshold requires at least one of lower_threshold, upper_threshold", errs.ErrRequiredParametersNotPassed)
	}
	return &AbsoluteThresholdDetector{Lower: lower, Upper: upper}, nil
}

func (d *AbsoluteThresholdDetector) Run(series *timeseries.TimeSeries) (*timeseries.TimeSeries, error) {
	scores := make(map[int64]float64, series.Len())
	for _, ts := range series.Timestamps() {
		v, _ := series.Get(ts)
		var score float64
		switch {
		case d.Upper != nil && v > *d.Upper:
			score = v - *d.Upper
		case d.Lower != nil && v < *d.Lower:
			score = *d.Lower - v
		}
		scores[ts] = score
	}
	result := timeseries.New(scores)
	denoiseScores(result, noisePercentThreshold)
	return result, nil
}
