package detector

import (
	"testing"

	"tsanomaly/internal/errs"
	"tsanomaly/internal/timeseries"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioSeries() *timeseries.TimeSeries {
	return timeseries.New(map[int64]float64{
		0: 0, 1: 0, 2: 0, 3: 0, 4: 1, 5: 2, 6: 2, 7: 2, 8: 0,
	})
}

func TestAnomalyDetector_DefaultPipeline_FindsAtLeastOneAnomaly(t *testing.T) {
	ad := NewAnomalyDetector(scenarioSeries(), "", Params{})

	anomalies, err := ad.GetAnomalies()
	require.NoError(t, err)
	assert.NotEmpty(t, anomalies)

	scores, err := ad.GetAllScores()
	require.NoError(t, err)
	assert.Equal(t, 9, scores.Len())
}

func TestAnomalyDetector_ExplicitZeroThreshold_FindsExactlyOneAnomaly(t *testing.T) {
	zero := 0.0
	ad := NewAnomalyDetector(scenarioSeries(), "", Params{})
	ad.ScoreThreshold = &zero

	anomalies, err := ad.GetAnomalies()
	require.NoError(t, err)
	require.Len(t, anomalies, 1)
}

func TestAnomalyDetector_AbsoluteThreshold_FindsAtLeastOneAnomaly(t *testing.T) {
	upper, lower := 0.2, 0.2
	ad := NewAnomalyDetector(scenarioSeries(), "absolute_threshold", Params{
		UpperThreshold: &upper,
		LowerThreshold: &lower,
	})

	anomalies, err := ad.GetAnomalies()
	require.NoError(t, err)
	assert.NotEmpty(t, anomalies)
}

func TestAnomalyDetector_AbsoluteThreshold_RequiresABound(t *testing.T) {
	ad := NewAnomalyDetector(scenarioSeries(), "absolute_threshold", Params{})

	_, err := ad.GetAnomalies()
	assert.ErrorIs(t, err, errs.ErrRequiredParametersNotPassed)
}

func TestAnomalyDetector_UnknownAlgorithm_Fails(t *testing.T) {
	ad := NewAnomalyDetector(scenarioSeries(), "not_a_real_algorithm", Params{})

	_, err := ad.GetAnomalies()
	assert.ErrorIs(t, err, errs.ErrAlgorithmNotFound)
}

func TestAnomalyDetector_ScoreOnly_SkipsIntervalExtraction(t *testing.T) {
	ad := NewAnomalyDetector(scenarioSeries(), "", Params{})
	ad.ScoreOnly = true

	anomalies, err := ad.GetAnomalies()
	require.NoError(t, err)
	assert.Nil(t, anomalies)
}

func TestAnomalyDetector_TooShortSeries_Fails(t *testing.T) {
	ad := NewAnomalyDetector(timeseries.New(map[int64]float64{1: 1}), "", Params{})

	_, err := ad.GetAnomalies()
	assert.ErrorIs(t, err, errs.ErrNotEnoughDataPoints)
}

func TestAnomalyDetector_FallsBackToDefaultWhenAlgorithmLacksData(t *testing.T) {
	// bitmap_detector needs at least 50 combined lag+future points; on a
	// short series it should fail with NotEnoughDataPoints and the
	// pipeline should transparently fall back to default_detector.
	series := scenarioSeries()
	ad := NewAnomalyDetector(series, "bitmap_detector", Params{})

	scores, err := ad.GetAllScores()
	require.NoError(t, err)
	assert.Equal(t, series.Len(), scores.Len())
	assert.Equal(t, DefaultAlgorithmName, ad.ranAlgorithmName)
}

func TestExtractIntervals_NonOverlappingAndOrdered(t *testing.T) {
	scores := timeseries.New(map[int64]float64{
		0: 0, 1: 5, 2: 5, 3: 0, 4: 0, 5: 7, 6: 0,
	})
	intervals := extractIntervals(scores, 1)
	require.Len(t, intervals, 2)
	assert.Equal(t, int64(1), intervals[0].start)
	assert.Equal(t, int64(2), intervals[0].end)
	assert.Equal(t, int64(5), intervals[1].start)
	assert.Equal(t, int64(5), intervals[1].end)
}

func TestExtractIntervals_TrailingOpenIntervalCloses(t *testing.T) {
	scores := timeseries.New(map[int64]float64{
		0: 0, 1: 5, 2: 5,
	})
	intervals := extractIntervals(scores, 1)
	require.Len(t, intervals, 1)
	assert.Equal(t, int64(1), intervals[0].start)
	assert.Equal(t, int64(2), intervals[0].end)
}
