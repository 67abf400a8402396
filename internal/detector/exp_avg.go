package detector

import (
	"tsanomaly/internal/numeric"
	"tsanomaly/internal/timeseries"
)

// ExpAvgDetector scores each point by how far it deviates from its
// exponential moving average, normalized by the whole series' standard
// deviation. Two modes: decay-all computes one EMA over the full series;
// the lagging-window mode recomputes the EMA fresh over a trailing window
// ending at each point. The decay-all pass always runs last and overwrites
// the windowed scores, so UseLagWindow does not change the returned scores:
// the windowed scores are computed and then discarded.
type ExpAvgDetector struct {
	Smoothing     float64
	UseLagWindow  bool
	LagWindowSize int
}

// NewExpAvgDetector builds an ExpAvgDetector for series, deriving the lag
// window size from emaLagWindowSizePercent when lagWindowSize is zero.
func NewExpAvgDetector(series *timeseries.TimeSeries, useLagWindow bool, lagWindowSize int) *ExpAvgDetector {
	if lagWindowSize == 0 {
		lagWindowSize = int(float64(series.Len()) * emaLagWindowSizePercent)
	}
	return &ExpAvgDetector{
		Smoothing:     emaSmoothingFactor,
		UseLagWindow:  useLagWindow,
		LagWindowSize: lagWindowSize,
	}
}

func (d *ExpAvgDetector) Run(series *timeseries.TimeSeries) (*timeseries.TimeSeries, error) {
	values := series.Values()
	timestamps := series.Timestamps()
	n := len(values)
	if n == 0 {
		return timeseries.New(nil), nil
	}

	sd := series.Stdev(0)

	var scores map[int64]float64
	if d.UseLagWindow {
		scores = d.lagWindowScores(values, timestamps, sd)
	}
	// Unconditional second pass: decay-all recomputes from scratch and
	// clobbers whatever the windowed branch produced above.
	scores = d.decayAllScores(values, timestamps, sd)

	result := timeseries.New(scores)
	denoiseScores(result, noisePercentThreshold)
	return result, nil
}

func (d *ExpAvgDetector) decayAllScores(values []float64, timestamps []int64, sd float64) map[int64]float64 {
	ema := numeric.EMA(d.Smoothing, values)
	scores := make(map[int64]float64, len(values))
	for i, v := range values {
		diff := v - ema[i]
		if sd == 0 {
			scores[timestamps[i]] = diff
		} else {
			scores[timestamps[i]] = absFloat(diff) / sd
		}
	}
	return scores
}

// lagWindowScores recomputes the EMA over a trailing window ending at each
// point, rather than carrying one running EMA across the whole series.
func (d *ExpAvgDetector) lagWindowScores(values []float64, timestamps []int64, sd float64) map[int64]float64 {
	scores := make(map[int64]float64, len(values))
	for i := range values {
		lo := i - d.LagWindowSize
		if lo < 0 {
			lo = 0
		}
		window := values[lo : i+1]
		ema := numeric.EMA(d.Smoothing, window)
		diff := values[i] - ema[len(ema)-1]
		if sd == 0 {
			scores[timestamps[i]] = diff
		} else {
			scores[timestamps[i]] = absFloat(diff) / sd
		}
	}
	return scores
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
