package detector

import (
	"math"

	"tsanomaly/internal/numeric"
	"tsanomaly/internal/timeseries"
)

// DerivativeDetector scores each point by how far its rate of change
// deviates from the EMA of the rate-of-change series, normalized by that
// raw-score vector's own standard deviation.
type DerivativeDetector struct {
	Smoothing float64
}

func NewDerivativeDetector() *DerivativeDetector {
	return &DerivativeDetector{Smoothing: derivativeSmoothingFactor}
}

func (d *DerivativeDetector) Run(series *timeseries.TimeSeries) (*timeseries.TimeSeries, error) {
	values := series.Values()
	timestamps := series.Timestamps()
	n := len(values)
	if n == 0 {
		return timeseries.New(nil), nil
	}

	derivative := make([]float64, n)
	for i := 1; i < n; i++ {
		dt := timestamps[i] - timestamps[i-1]
		if dt == 0 {
			derivative[i] = absFloat(values[i] - values[i-1])
		} else {
			derivative[i] = absFloat((values[i] - values[i-1]) / float64(dt))
		}
	}
	if n > 1 {
		derivative[0] = derivative[1]
	}

	ema := numeric.EMA(d.Smoothing, derivative)

	raw := make([]float64, n)
	for i := range raw {
		raw[i] = absFloat(derivative[i] - ema[i])
	}
	sd := stdevOf(raw)

	scores := make(map[int64]float64, n)
	for i, ts := range timestamps {
		if sd != 0 {
			scores[ts] = raw[i] / sd
		} else {
			scores[ts] = raw[i]
		}
	}

	result := timeseries.New(scores)
	denoiseScores(result, noisePercentThreshold)
	return result, nil
}

// stdevOf returns the population standard deviation of a raw float slice,
// independent of TimeSeries so algorithms can normalize intermediate
// vectors that never become a TimeSeries of their own.
func stdevOf(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)
	var sumSq float64
	for _, v := range values {
		sumSq += (v - mean) * (v - mean)
	}
	return math.Sqrt(sumSq / float64(n))
}
