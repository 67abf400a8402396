package detector

import (
	"fmt"

	"tsanomaly/internal/errs"
	"tsanomaly/internal/timeseries"
)

// DiffPercentThresholdDetector scores a point by its percent deviation from
// a baseline series, assumed index-aligned with the target (same length,
// same position means same moment). Deviations beyond UpperPercent score
// positive; deviations below LowerPercent score positive too (the score is
// the magnitude, not the signed percent).
type DiffPercentThresholdDetector struct {
	Baseline     *timeseries.TimeSeries
	UpperPercent *float64
	LowerPercent *float64
}

// NewDiffPercentThresholdDetector requires baseline and at least one of
// upperPercent, lowerPercent.
func NewDiffPercentThresholdDetector(baseline *timeseries.TimeSeries, upperPercent, lowerPercent *float64) (*DiffPercentThresholdDetector, error) {
	if upperPercent == nil && lowerPercent == nil {
		return nil, fmt.Errorf("%w: diff_percent_threshold requires at least one of upper_threshold, lower_threshold", errs.ErrRequiredParametersNotPassed)
	}
	if baseline == nil {
		return nil, fmt.Errorf("%w: diff_percent_threshold requires a baseline series", errs.ErrRequiredParametersNotPassed)
	}
	return &DiffPercentThresholdDetector{Baseline: baseline, UpperPercent: upperPercent, LowerPercent: lowerPercent}, nil
}

func (d *DiffPercentThresholdDetector) Run(series *timeseries.TimeSeries) (*timeseries.TimeSeries, error) {
	values := series.Values()
	timestamps := series.Timestamps()
	baseline := d.Baseline.Values()
	n := len(values)
	if len(baseline) < n {
		n = len(baseline)
	}

	scores := make(map[int64]float64, n)
	for i := 0; i < n; i++ {
		v, b := values[i], baseline[i]

		var diffPercent float64
		switch {
		case b > 0:
			diffPercent = 100 * (v - b) / b
		case v > 0:
			diffPercent = 100
		default:
			diffPercent = 0
		}

		var score float64
		switch {
		case d.UpperPercent != nil && diffPercent > *d.UpperPercent && diffPercent > 0:
			score = diffPercent
		case d.LowerPercent != nil && diffPercent < *d.LowerPercent && diffPercent < 0:
			score = -diffPercent
		}
		scores[timestamps[i]] = score
	}
	result := timeseries.New(scores)
	denoiseScores(result, noisePercentThreshold)
	return result, nil
}
