// Package detector implements the anomaly-scoring algorithms and the
// detector pipeline that dispatches to them.
package detector

import "tsanomaly/internal/timeseries"

// Algorithm scores a time series for anomalousness. Implementations hold
// their own tuned parameters; Run returns a score series aligned to (a
// subset of) the input's timestamps.
type Algorithm interface {
	Run(series *timeseries.TimeSeries) (*timeseries.TimeSeries, error)
}

// denoiseScores removes noise below a percentage of the maximum score,
// the way every algorithm here finishes its run. Factored as a free
// function rather than a shared base-struct method: none of the algorithms
// otherwise share state, and a free function keeps that explicit.
func denoiseScores(scores *timeseries.TimeSeries, noisePercentThreshold float64) {
	maxScore := scores.Max(0)
	if maxScore == 0 {
		return
	}
	threshold := maxScore * noisePercentThreshold
	for _, ts := range scores.Timestamps() {
		v, _ := scores.Get(ts)
		if v < threshold {
			scores.Set(ts, 0)
		}
	}
}
