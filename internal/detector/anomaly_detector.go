package detector

import (
	"errors"

	"tsanomaly/internal/errs"
	"tsanomaly/internal/timeseries"
)

// perAlgorithmThreshold gives exp_avg_detector and default_detector a fixed
// default score threshold for interval extraction when the caller doesn't
// supply one explicitly. Every other algorithm falls back to
// ScorePercentThreshold of its own run's maximum score instead.
var perAlgorithmThreshold = map[string]float64{
	"exp_avg_detector": 3.0,
	"default_detector": 3.0,
}

// defaultScorePercentThreshold is used when an algorithm has no entry in
// perAlgorithmThreshold and the caller didn't pass ScoreThreshold: the
// threshold is that percent of the run's maximum score.
const defaultScorePercentThreshold = 0.2

// AnomalyDetector runs a named algorithm over a series, turns the
// resulting score series into anomaly intervals, and for each interval
// refines a single exact_timestamp by running a (possibly different)
// refine algorithm over the score series cropped to that interval.
type AnomalyDetector struct {
	Series *timeseries.TimeSeries
	Params Params

	AlgorithmName string
	// CustomAlgorithm, when set, overrides AlgorithmName/Params/the
	// registry entirely — the caller's own Algorithm runs instead.
	CustomAlgorithm Algorithm

	RefineAlgorithmName string
	RefineParams        Params

	ScoreThreshold        *float64
	ScorePercentThreshold float64
	ScoreOnly             bool

	ranAlgorithmName string
}

// NewAnomalyDetector builds a detector for series using algorithmName; an
// empty algorithmName means DefaultAlgorithmName. The refine algorithm
// defaults to DefaultRefineAlgorithmName and ScorePercentThreshold to
// defaultScorePercentThreshold.
func NewAnomalyDetector(series *timeseries.TimeSeries, algorithmName string, params Params) *AnomalyDetector {
	if algorithmName == "" {
		algorithmName = DefaultAlgorithmName
	}
	return &AnomalyDetector{
		Series:                series,
		AlgorithmName:         algorithmName,
		Params:                params,
		RefineAlgorithmName:   DefaultRefineAlgorithmName,
		ScorePercentThreshold: defaultScorePercentThreshold,
	}
}

// build constructs either the caller-provided algorithm override or the
// named registry algorithm.
func (ad *AnomalyDetector) build(name string, params Params) (Algorithm, error) {
	if ad.CustomAlgorithm != nil {
		return ad.CustomAlgorithm, nil
	}
	return Build(name, ad.Series, params)
}

// GetAllScores runs the configured algorithm and returns its raw score
// series, falling back to DefaultAlgorithmName when the configured one
// can't run for lack of data.
func (ad *AnomalyDetector) GetAllScores() (*timeseries.TimeSeries, error) {
	// A lack-of-data failure can come from construction (bitmap_detector's
	// window sanity check) or from Run; both take the fallback.
	var scores *timeseries.TimeSeries
	algo, err := ad.build(ad.AlgorithmName, ad.Params)
	if err == nil {
		scores, err = algo.Run(ad.Series)
	}
	if err != nil {
		if errors.Is(err, errs.ErrNotEnoughDataPoints) && ad.AlgorithmName != DefaultAlgorithmName {
			ad.ranAlgorithmName = DefaultAlgorithmName
			fallback := NewDefaultDetector()
			return fallback.Run(ad.Series)
		}
		return nil, err
	}
	ad.ranAlgorithmName = ad.AlgorithmName
	return scores, nil
}

func (ad *AnomalyDetector) threshold(scores *timeseries.TimeSeries) float64 {
	if ad.ScoreThreshold != nil {
		return *ad.ScoreThreshold
	}
	ranAs := ad.ranAlgorithmName
	if ranAs == "" {
		ranAs = ad.AlgorithmName
	}
	if t, ok := perAlgorithmThreshold[ranAs]; ok {
		return t
	}
	percent := ad.ScorePercentThreshold
	if percent == 0 {
		percent = defaultScorePercentThreshold
	}
	return scores.Max(0) * percent
}

// GetAnomalies runs the full pipeline: score, extract over-threshold
// intervals, and refine each interval's exact_timestamp.
func (ad *AnomalyDetector) GetAnomalies() ([]Anomaly, error) {
	if ad.Series.Len() < 2 {
		return nil, errs.ErrNotEnoughDataPoints
	}

	scores, err := ad.GetAllScores()
	if err != nil {
		return nil, err
	}
	if ad.ScoreOnly {
		return nil, nil
	}

	threshold := ad.threshold(scores)
	intervals := extractIntervals(scores, threshold)

	refineAlgorithmName := ad.RefineAlgorithmName
	if refineAlgorithmName == "" {
		refineAlgorithmName = DefaultRefineAlgorithmName
	}

	anomalies := make([]Anomaly, 0, len(intervals))
	for _, iv := range intervals {
		exact := ad.refine(scores, iv, refineAlgorithmName)
		anomalies = append(anomalies, Anomaly{
			StartTimestamp: iv.start,
			EndTimestamp:   iv.end,
			ExactTimestamp: exact,
			AnomalyScore:   iv.peakScore,
		})
	}
	return anomalies, nil
}

type interval struct {
	start, end    int64
	peakTimestamp int64
	peakScore     float64
}

// extractIntervals groups contiguous over-threshold timestamps in scores
// into intervals, recording each interval's peak score and the timestamp
// it occurred at.
func extractIntervals(scores *timeseries.TimeSeries, threshold float64) []interval {
	var result []interval
	var cur *interval

	for _, ts := range scores.Timestamps() {
		v, _ := scores.Get(ts)
		if v <= threshold {
			if cur != nil {
				result = append(result, *cur)
				cur = nil
			}
			continue
		}
		if cur == nil {
			cur = &interval{start: ts, end: ts, peakTimestamp: ts, peakScore: v}
		} else {
			cur.end = ts
			if v > cur.peakScore {
				cur.peakScore = v
				cur.peakTimestamp = ts
			}
		}
	}
	if cur != nil {
		result = append(result, *cur)
	}
	return result
}

// refine crops the score series to the interval and runs the refine
// algorithm over that crop, returning the timestamp of its highest score.
// Any failure (refine algorithm errors, or needs params that weren't
// supplied) falls back to the interval's own peak timestamp rather than
// failing the whole analysis.
func (ad *AnomalyDetector) refine(scores *timeseries.TimeSeries, iv interval, refineAlgorithmName string) int64 {
	cropped, err := scores.Crop(iv.start, iv.end)
	if err != nil || cropped.Len() == 0 {
		return iv.peakTimestamp
	}

	algo, err := Build(refineAlgorithmName, cropped, ad.RefineParams)
	if err != nil {
		return iv.peakTimestamp
	}
	refined, err := algo.Run(cropped)
	if err != nil || refined.Len() == 0 {
		return iv.peakTimestamp
	}

	var best int64
	var bestScore float64
	first := true
	for _, ts := range refined.Timestamps() {
		v, _ := refined.Get(ts)
		if first || v > bestScore {
			best, bestScore = ts, v
			first = false
		}
	}
	return best
}
