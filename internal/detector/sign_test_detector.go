package detector

import (
	"fmt"

	"tsanomaly/internal/errs"
	"tsanomaly/internal/numeric"
	"tsanomaly/internal/timeseries"
)

// SignTestDetector runs a rolling binomial hypothesis test against a
// baseline series: at every point it asks whether the target has crossed
// (1+Alpha) times the baseline (plus Offset), builds a 0/1 indicator
// series from that, and convolves it with a ScanWindow-wide box kernel.
// Windows whose indicator count clears the Binomial(ScanWindow, 0.5)
// critical value become candidate intervals, which are merged when they
// sit closer together than Gap and scored by how far their indicator
// count sits in the binomial CDF.
type SignTestDetector struct {
	Baseline   *timeseries.TimeSeries
	Sign       float64 // +1 for upper, -1 for lower
	Alpha      float64 // threshold percent / 100
	ScanWindow int
	Offset     float64
	Confidence float64
	Gap        int64
}

// NewSignTestDetector requires baseline, scanWindow, and exactly one of
// upperPercent/lowerPercent. confidence defaults to
// signTestConfidenceDefault when zero.
func NewSignTestDetector(baseline *timeseries.TimeSeries, upperPercent, lowerPercent *float64, scanWindow int, offset, confidence float64, gap int64) (*SignTestDetector, error) {
	if (upperPercent == nil) == (lowerPercent == nil) {
		return nil, fmt.Errorf("%w: sign_test requires exactly one of percent_threshold_upper, percent_threshold_lower", errs.ErrRequiredParametersNotPassed)
	}
	if scanWindow <= 0 {
		return nil, fmt.Errorf("%w: sign_test requires scan_window", errs.ErrRequiredParametersNotPassed)
	}
	if baseline == nil {
		return nil, fmt.Errorf("%w: sign_test requires a baseline series", errs.ErrRequiredParametersNotPassed)
	}
	sign := 1.0
	var percent float64
	if upperPercent != nil {
		percent = *upperPercent
	} else {
		sign = -1.0
		percent = *lowerPercent
	}
	if confidence == 0 {
		confidence = signTestConfidenceDefault
	}
	return &SignTestDetector{
		Baseline:   baseline,
		Sign:       sign,
		Alpha:      percent / 100,
		ScanWindow: scanWindow,
		Offset:     offset,
		Confidence: confidence,
		Gap:        gap,
	}, nil
}

// signTestInterval is a half-open index range [start, end), matching the
// convolution's own index space rather than the timestamp domain: the
// reference implementation merges and scores on index positions, and doing
// it on timestamps instead would silently change behavior for any series
// whose timestamps aren't consecutive unit steps.
type signTestInterval struct {
	start, end int
}

func (d *SignTestDetector) Run(series *timeseries.TimeSeries) (*timeseries.TimeSeries, error) {
	values := series.Values()
	timestamps := series.Timestamps()
	baseline := d.Baseline.Values()

	n := len(values)
	if len(baseline) < n {
		n = len(baseline)
	}
	k := d.ScanWindow
	if n < k {
		return nil, errs.ErrNotEnoughDataPoints
	}

	indicator := make([]int, n)
	for i := 0; i < n; i++ {
		lhs := d.Sign * values[i]
		rhs := d.Sign*d.Offset + (1+d.Alpha)*d.Sign*baseline[i]
		if lhs > rhs {
			indicator[i] = 1
		}
	}

	convolved := boxConvolveValid(indicator, k)
	critical := numeric.Qbinom(1-d.Confidence, k) - 1

	var candidates []signTestInterval
	for j, count := range convolved {
		if count > critical {
			candidates = append(candidates, signTestInterval{start: j, end: j + k})
		}
	}

	scores := make(map[int64]float64, n)
	for _, ts := range timestamps[:n] {
		scores[ts] = 0
	}
	if len(candidates) == 0 {
		return timeseries.New(scores), nil
	}

	merged := mergeSignTestIntervals(candidates, d.Gap)
	for _, iv := range merged {
		count := 0
		for i := iv.start; i < iv.end; i++ {
			count += indicator[i]
		}
		width := iv.end - iv.start
		p := numeric.Pbinom(float64(count), width)
		score := 100 * p
		for i := iv.start; i < iv.end; i++ {
			scores[timestamps[i]] = score
		}
	}

	return timeseries.New(scores), nil
}

// boxConvolveValid computes the "valid"-mode convolution of indicator with
// a length-k all-ones kernel: convolved[j] = sum(indicator[j:j+k]).
func boxConvolveValid(indicator []int, k int) []int {
	n := len(indicator)
	if n < k {
		return nil
	}
	out := make([]int, n-k+1)
	var sum int
	for i := 0; i < k; i++ {
		sum += indicator[i]
	}
	out[0] = sum
	for j := 1; j < len(out); j++ {
		sum += indicator[j+k-1] - indicator[j-1]
		out[j] = sum
	}
	return out
}

// mergeSignTestIntervals merges candidates (already sorted by start) whose
// start sits less than gap past the running merged interval's end,
// extending the merged interval's end to the max of the two.
func mergeSignTestIntervals(candidates []signTestInterval, gap int64) []signTestInterval {
	if len(candidates) == 0 {
		return nil
	}
	merged := []signTestInterval{candidates[0]}
	for _, c := range candidates[1:] {
		last := &merged[len(merged)-1]
		if int64(c.start-last.end) < gap {
			if c.end > last.end {
				last.end = c.end
			}
			continue
		}
		merged = append(merged, c)
	}
	return merged
}
