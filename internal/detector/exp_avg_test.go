package detector

import (
	"testing"

	"tsanomaly/internal/timeseries"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpAvgDetector_ConstantSeriesScoresZero(t *testing.T) {
	series := timeseries.New(map[int64]float64{1: 5, 2: 5, 3: 5, 4: 5})
	d := NewExpAvgDetector(series, false, 0)

	scores, err := d.Run(series)
	require.NoError(t, err)
	for _, ts := range scores.Timestamps() {
		v, _ := scores.Get(ts)
		assert.Equal(t, 0.0, v)
	}
}

func TestExpAvgDetector_SpikeScoresHigherThanBaseline(t *testing.T) {
	series := timeseries.New(map[int64]float64{
		1: 10, 2: 10, 3: 10, 4: 10, 5: 100, 6: 10, 7: 10,
	})
	d := NewExpAvgDetector(series, false, 0)

	scores, err := d.Run(series)
	require.NoError(t, err)

	spike, _ := scores.Get(5)
	baseline, _ := scores.Get(2)
	assert.Greater(t, spike, baseline)
}

func TestExpAvgDetector_DecayAllAlwaysWinsOverLagWindow(t *testing.T) {
	// UseLagWindow=true still must match the decay-all-only run exactly,
	// since decay-all unconditionally overwrites the windowed pass.
	series := timeseries.New(map[int64]float64{1: 1, 2: 4, 3: 2, 4: 9, 5: 3})

	withLagWindow := NewExpAvgDetector(series, true, 2)
	withoutLagWindow := NewExpAvgDetector(series, false, 0)

	scoresA, err := withLagWindow.Run(series)
	require.NoError(t, err)
	scoresB, err := withoutLagWindow.Run(series)
	require.NoError(t, err)

	assert.Equal(t, scoresB.Values(), scoresA.Values())
}
