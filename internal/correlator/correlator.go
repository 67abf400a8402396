// Package correlator finds the time-shifted correlation between two
// series, optionally projecting each through the anomaly detector's score
// series first so that what gets correlated is "how anomalous" rather than
// raw magnitude.
package correlator

import (
	"errors"
	"fmt"

	"tsanomaly/internal/detector"
	"tsanomaly/internal/errs"
	"tsanomaly/internal/timeseries"
)

var errNotEnoughOverlap = errors.New("correlator: not enough overlapping points to correlate")

// DefaultAlgorithmName is the only correlation algorithm currently
// registered; named explicitly so dispatch can still reject anything else
// with ErrAlgorithmNotFound rather than silently falling back.
const DefaultAlgorithmName = "cross_correlator"

// Correlator is the top-level entry point: given two raw series and an
// optional window, it optionally scores each for anomalousness, crops both
// to the window, and runs the named algorithm over what's left.
type Correlator struct {
	Series1         *timeseries.TimeSeries
	Series2         *timeseries.TimeSeries
	UseAnomalyScore bool
	AlgorithmName   string
	MaxShiftSeconds int64
	ShiftImpact     float64
}

// NewCorrelator builds a Correlator between a and b. useAnomalyScore
// mirrors the reference implementation's default of projecting both series
// through the anomaly detector before correlating, rather than correlating
// raw values. An empty algorithmName means DefaultAlgorithmName.
func NewCorrelator(a, b *timeseries.TimeSeries, useAnomalyScore bool, algorithmName string) *Correlator {
	if algorithmName == "" {
		algorithmName = DefaultAlgorithmName
	}
	return &Correlator{
		Series1:         a,
		Series2:         b,
		UseAnomalyScore: useAnomalyScore,
		AlgorithmName:   algorithmName,
	}
}

// Correlate runs the full pipeline and returns the best-shift Result. A nil
// window correlates the full prepared series; otherwise both series are
// cropped to [start, end] first, and an empty crop on either side is
// ErrNotEnoughDataPoints.
func (c *Correlator) Correlate(window *Window) (*Result, error) {
	if c.AlgorithmName != DefaultAlgorithmName {
		return nil, fmt.Errorf("%w: %s", errs.ErrAlgorithmNotFound, c.AlgorithmName)
	}

	s1, err := c.prepare(c.Series1)
	if err != nil {
		return nil, err
	}
	s2, err := c.prepare(c.Series2)
	if err != nil {
		return nil, err
	}

	if window != nil {
		s1, err = cropOrNotEnough(s1, window.Start, window.End)
		if err != nil {
			return nil, err
		}
		s2, err = cropOrNotEnough(s2, window.Start, window.End)
		if err != nil {
			return nil, err
		}
	}
	if s1.Len() < 2 || s2.Len() < 2 {
		return nil, errs.ErrNotEnoughDataPoints
	}

	xc := NewCrossCorrelator(s1, s2, c.MaxShiftSeconds, c.ShiftImpact)
	return xc.Correlate()
}

// IsCorrelated runs Correlate and reports (result, true) only when the
// raw coefficient clears threshold; otherwise (nil, false).
func (c *Correlator) IsCorrelated(window *Window, threshold float64) (*Result, bool, error) {
	result, err := c.Correlate(window)
	if err != nil {
		return nil, false, err
	}
	if !result.IsCorrelated(threshold) {
		return nil, false, nil
	}
	return result, true, nil
}

// Window is an inclusive [Start, End] time range to crop both series to
// before correlating. A nil *Window means "use the full series."
type Window struct {
	Start, End int64
}

func cropOrNotEnough(series *timeseries.TimeSeries, start, end int64) (*timeseries.TimeSeries, error) {
	cropped, err := series.Crop(start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrNotEnoughDataPoints, err)
	}
	return cropped, nil
}

// prepare optionally projects series through the anomaly detector's score
// series (in score-only mode, using the default detection algorithm);
// otherwise returns series unchanged.
func (c *Correlator) prepare(series *timeseries.TimeSeries) (*timeseries.TimeSeries, error) {
	if !c.UseAnomalyScore {
		return series, nil
	}
	ad := detector.NewAnomalyDetector(series, "", detector.Params{})
	ad.ScoreOnly = true
	scores, err := ad.GetAllScores()
	if err != nil {
		return nil, err
	}
	return scores, nil
}
