package detector

import "tsanomaly/internal/timeseries"

// DefaultDetector blends an ExpAvgDetector (decay-all) and a
// DerivativeDetector score at each timestamp: the composed score is
// EmaWeight of the ema score plus the remainder of the derivative score,
// except that the ema score always wins ties and, past Significance, the
// derivative score can win outright. This is the fallback used whenever a
// request doesn't name a specific algorithm, or when the named algorithm
// can't run for lack of data.
type DefaultDetector struct {
	EmaWeight    float64
	Significance float64
}

func NewDefaultDetector() *DefaultDetector {
	return &DefaultDetector{
		EmaWeight:    defaultEmaWeight,
		Significance: defaultSignificance,
	}
}

func (d *DefaultDetector) Run(series *timeseries.TimeSeries) (*timeseries.TimeSeries, error) {
	emaScores, err := NewExpAvgDetector(series, false, 0).Run(series)
	if err != nil {
		return nil, err
	}
	derivScores, err := NewDerivativeDetector().Run(series)
	if err != nil {
		return nil, err
	}

	combined := make(map[int64]float64, emaScores.Len())
	for _, ts := range emaScores.Timestamps() {
		a, _ := emaScores.Get(ts)
		b, _ := derivScores.Get(ts)

		s := a*d.EmaWeight + b*(1-d.EmaWeight)
		if s < a {
			s = a
		}
		if a > d.Significance && b > s {
			s = b
		}
		combined[ts] = s
	}

	result := timeseries.New(combined)
	denoiseScores(result, noisePercentThreshold)
	return result, nil
}
