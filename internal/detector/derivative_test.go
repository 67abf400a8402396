package detector

import (
	"testing"

	"tsanomaly/internal/timeseries"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivativeDetector_ConstantRateScoresZero(t *testing.T) {
	series := timeseries.New(map[int64]float64{1: 0, 2: 1, 3: 2, 4: 3, 5: 4})
	d := NewDerivativeDetector()

	scores, err := d.Run(series)
	require.NoError(t, err)
	for _, ts := range scores.Timestamps() {
		v, _ := scores.Get(ts)
		assert.Equal(t, 0.0, v, "a constant rate of change has zero deviation from its own EMA")
	}
}

func TestDerivativeDetector_RateChangeScoresAboveZero(t *testing.T) {
	series := timeseries.New(map[int64]float64{1: 0, 2: 1, 3: 2, 4: 50, 5: 51})
	d := NewDerivativeDetector()

	scores, err := d.Run(series)
	require.NoError(t, err)

	jump, _ := scores.Get(4)
	assert.Greater(t, jump, 0.0)
}

func TestDerivativeDetector_FirstPointMirrorsSecond(t *testing.T) {
	series := timeseries.New(map[int64]float64{1: 0, 2: 10, 3: 10})
	d := NewDerivativeDetector()

	scores, err := d.Run(series)
	require.NoError(t, err)

	v1, _ := scores.Get(1)
	v2, _ := scores.Get(2)
	assert.Equal(t, v2, v1, "d[0] is defined to mirror d[1]")
}
