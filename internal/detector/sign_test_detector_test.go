package detector

import (
	"testing"

	"tsanomaly/internal/errs"
	"tsanomaly/internal/timeseries"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSignTestDetector_RequiresExactlyOneBound(t *testing.T) {
	baseline := timeseries.New(map[int64]float64{1: 1})

	_, err := NewSignTestDetector(baseline, nil, nil, 24, 0, 0, 0)
	require.ErrorIs(t, err, errs.ErrRequiredParametersNotPassed)

	_, err = NewSignTestDetector(baseline, ptr(20), ptr(-20), 24, 0, 0, 0)
	require.ErrorIs(t, err, errs.ErrRequiredParametersNotPassed)

	_, err = NewSignTestDetector(baseline, ptr(20), nil, 0, 0, 0, 0)
	require.ErrorIs(t, err, errs.ErrRequiredParametersNotPassed)

	_, err = NewSignTestDetector(nil, ptr(20), nil, 24, 0, 0, 0)
	require.ErrorIs(t, err, errs.ErrRequiredParametersNotPassed)
}

// TestSignTestDetector_SingleElevatedRegion matches the spec's literal
// scenario: a baseline constant at 1 for t in [1,99], target identical
// except ts[10..33] bumped 20%+epsilon over baseline, scanned with a
// 24-wide window. Exactly one anomaly should surface, spanning [4, 39]
// with a score strictly between 98 and 99.
func TestSignTestDetector_SingleElevatedRegion(t *testing.T) {
	baseline := make(map[int64]float64, 99)
	target := make(map[int64]float64, 99)
	for ts := int64(1); ts <= 99; ts++ {
		baseline[ts] = 1
		target[ts] = 1
	}
	for ts := int64(10); ts <= 33; ts++ {
		target[ts] = 1.2 + 0.001
	}

	d, err := NewSignTestDetector(timeseries.New(baseline), ptr(20), nil, 24, 0, 0, 0)
	require.NoError(t, err)

	scores, err := d.Run(timeseries.New(target))
	require.NoError(t, err)

	ad := &AnomalyDetector{
		Series:                timeseries.New(target),
		CustomAlgorithm:       d,
		RefineAlgorithmName:   DefaultRefineAlgorithmName,
		ScorePercentThreshold: 0.2,
	}
	anomalies, err := ad.GetAnomalies()
	require.NoError(t, err)
	require.Len(t, anomalies, 1)

	got := anomalies[0]
	assert.Equal(t, int64(4), got.StartTimestamp)
	assert.Equal(t, int64(39), got.EndTimestamp)
	assert.Greater(t, got.AnomalyScore, 98.0)
	assert.Less(t, got.AnomalyScore, 99.0)

	// Sanity on the raw score series: every point in [4,39] carries a
	// non-zero merged-interval score, everything else is zero.
	for _, ts := range scores.Timestamps() {
		v, _ := scores.Get(ts)
		if ts >= 4 && ts <= 39 {
			assert.Greater(t, v, 0.0)
		} else {
			assert.Equal(t, 0.0, v)
		}
	}
}

// TestSignTestDetector_MergesCloseIntervals matches the spec's two-region
// scenario: elevated regions at [1..24] and [60..83] detect as two separate
// anomalies under the default confidence and scan window; raising the
// detector's Gap above the distance between the two candidate groups
// merges them into one.
func TestSignTestDetector_MergesCloseIntervals(t *testing.T) {
	build := func(gapStart, gapEnd int64) (map[int64]float64, map[int64]float64) {
		baseline := make(map[int64]float64, 99)
		target := make(map[int64]float64, 99)
		for ts := int64(1); ts <= 99; ts++ {
			baseline[ts] = 1
			target[ts] = 1
		}
		for ts := int64(1); ts <= 24; ts++ {
			target[ts] = 1.2 + 0.001
		}
		for ts := gapStart; ts <= gapEnd; ts++ {
			target[ts] = 1.2 + 0.001
		}
		return baseline, target
	}

	t.Run("separate regions yield two anomalies", func(t *testing.T) {
		baseline, target := build(60, 83)
		d, err := NewSignTestDetector(timeseries.New(baseline), ptr(20), nil, 24, 0, 0, 0)
		require.NoError(t, err)

		ad := &AnomalyDetector{
			Series:                timeseries.New(target),
			CustomAlgorithm:       d,
			RefineAlgorithmName:   DefaultRefineAlgorithmName,
			ScorePercentThreshold: 0.2,
		}
		anomalies, err := ad.GetAnomalies()
		require.NoError(t, err)
		require.Len(t, anomalies, 2)
		assert.Equal(t, int64(1), anomalies[0].StartTimestamp)
		assert.Equal(t, int64(30), anomalies[0].EndTimestamp)
		assert.Equal(t, int64(54), anomalies[1].StartTimestamp)
		assert.Equal(t, int64(89), anomalies[1].EndTimestamp)
	})

	t.Run("widening gap tolerance merges the two regions into one", func(t *testing.T) {
		baseline, target := build(60, 83)
		// A large Gap pulls the two candidate groups together regardless of
		// how far apart their data actually sits.
		d, err := NewSignTestDetector(timeseries.New(baseline), ptr(20), nil, 24, 0, 0, 60)
		require.NoError(t, err)

		ad := &AnomalyDetector{
			Series:                timeseries.New(target),
			CustomAlgorithm:       d,
			RefineAlgorithmName:   DefaultRefineAlgorithmName,
			ScorePercentThreshold: 0.2,
		}
		anomalies, err := ad.GetAnomalies()
		require.NoError(t, err)
		require.Len(t, anomalies, 1)
		assert.Equal(t, int64(1), anomalies[0].StartTimestamp)
		assert.Equal(t, int64(89), anomalies[0].EndTimestamp)
	})
}

func TestSignTestDetector_TooFewPointsFails(t *testing.T) {
	baseline := timeseries.New(map[int64]float64{1: 1, 2: 1, 3: 1})
	d, err := NewSignTestDetector(baseline, ptr(20), nil, 24, 0, 0, 0)
	require.NoError(t, err)

	_, err = d.Run(timeseries.New(map[int64]float64{1: 1, 2: 1, 3: 1}))
	assert.ErrorIs(t, err, errs.ErrNotEnoughDataPoints)
}
