package correlator

import (
	"sort"

	"tsanomaly/internal/timeseries"
)

// Result is the outcome of correlating two series: the time shift (in the
// series' own timestamp units) at which the raw Pearson-style coefficient
// peaked, that raw coefficient, and the largest shift-penalized coefficient
// over all searched delays (not necessarily the delay reported in Shift).
type Result struct {
	Shift              int64
	Coefficient        float64
	ShiftedCoefficient float64
}

// IsCorrelated reports whether the correlation clears threshold.
func (r Result) IsCorrelated(threshold float64) bool {
	return r.Coefficient >= threshold
}

// CrossCorrelator searches a window of time shifts for the one that makes
// two series correlate best. Shifts are searched in index steps derived
// from the series' own timestamp spacing, not in raw seconds. The reported
// ShiftedCoefficient is the maximum shift-penalized coefficient over the
// whole delay range independently of which delay produced the winning raw
// Coefficient — the two need not come from the same delay.
type CrossCorrelator struct {
	Series1         *timeseries.TimeSeries
	Series2         *timeseries.TimeSeries
	MaxShiftSeconds int64
	ShiftImpact     float64
}

// NewCrossCorrelator builds a CrossCorrelator between a and b, defaulting
// the shift search window and impact factor when the caller passes zero.
func NewCrossCorrelator(a, b *timeseries.TimeSeries, maxShiftSeconds int64, shiftImpact float64) *CrossCorrelator {
	if maxShiftSeconds == 0 {
		maxShiftSeconds = xcorrShiftSeconds
	}
	if shiftImpact == 0 {
		shiftImpact = xcorrShiftImpact
	}
	return &CrossCorrelator{
		Series1:         a,
		Series2:         b,
		MaxShiftSeconds: maxShiftSeconds,
		ShiftImpact:     shiftImpact,
	}
}

// Correlate normalizes and aligns both series, then searches delays in
// [-S, S) steps (S derived from MaxShiftSeconds via the series' own
// timestamp spacing) for the one whose normalized covariance is highest,
// and returns it alongside the highest shift-penalized coefficient found
// over the whole delay range.
func (c *CrossCorrelator) Correlate() (*Result, error) {
	a := c.Series1.Clone()
	b := c.Series2.Clone()
	a.Normalize()
	b.Normalize()

	alignedA, alignedB := timeseries.Align(a, b)
	n := alignedA.Len()
	if n < 2 {
		return nil, errNotEnoughOverlap
	}

	avgA, avgB := alignedA.Average(0), alignedB.Average(0)
	sdA, sdB := alignedA.Stdev(0), alignedB.Stdev(0)
	denom := sdA * sdB * float64(n)

	timestamps := alignedA.Timestamps()
	valuesA, valuesB := alignedA.Values(), alignedB.Values()

	steps := shiftSteps(timestamps, c.MaxShiftSeconds)
	lo, hi := -steps, steps-1
	if steps == 0 {
		lo, hi = 0, 0
	}

	var bestDeltaSec int64
	var bestR float64
	var bestShifted float64
	haveBest, haveShifted := false, false

	for d := lo; d <= hi; d++ {
		deltaSec, r, ok := correlationAtDelay(valuesA, valuesB, timestamps, avgA, avgB, denom, d)
		if !ok {
			continue
		}
		if !haveBest || r > bestR {
			bestDeltaSec, bestR = deltaSec, r
			haveBest = true
		}

		shifted := r
		if c.MaxShiftSeconds != 0 {
			shifted = r * (1 + (float64(deltaSec)/float64(c.MaxShiftSeconds))*c.ShiftImpact)
		}
		if !haveShifted || shifted > bestShifted {
			bestShifted = shifted
			haveShifted = true
		}
	}
	if !haveBest {
		return nil, errNotEnoughOverlap
	}

	return &Result{
		Shift:              bestDeltaSec,
		Coefficient:        bestR,
		ShiftedCoefficient: bestShifted,
	}, nil
}

// shiftSteps binary-searches timestamps for the first index whose offset
// from timestamps[0] exceeds maxShiftSeconds, the index-space bound S on
// the delay search.
func shiftSteps(timestamps []int64, maxShiftSeconds int64) int {
	if len(timestamps) == 0 {
		return 0
	}
	t0 := timestamps[0]
	return sort.Search(len(timestamps), func(i int) bool {
		return timestamps[i]-t0 > maxShiftSeconds
	})
}

// correlationAtDelay computes r = sum((a[i]-avgA)*(b[i+d]-avgB))/denom over
// valid index pairs, and maps the index delay d to a signed second offset
// using the series' own timestamps. When denom is zero (one or both series
// have no variance in the aligned window), it falls back to the raw
// covariance sum as r instead of failing, matching the reference, which
// only skips a delay for lack of overlapping points, never for zero
// variance.
func correlationAtDelay(valuesA, valuesB []float64, timestamps []int64, avgA, avgB, denom float64, d int) (int64, float64, bool) {
	n := len(valuesA)
	var sum float64
	count := 0
	for i := 0; i < n; i++ {
		j := i + d
		if j < 0 || j >= n {
			continue
		}
		sum += (valuesA[i] - avgA) * (valuesB[j] - avgB)
		count++
	}
	if count == 0 {
		return 0, 0, false
	}
	r := sum
	if denom != 0 {
		r = sum / denom
	}

	absD := d
	if absD < 0 {
		absD = -absD
	}
	deltaSec := timestamps[absD] - timestamps[0]
	if d < 0 {
		deltaSec = -deltaSec
	}
	return deltaSec, r, true
}
