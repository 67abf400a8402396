package detector

import (
	"testing"

	"tsanomaly/internal/errs"
	"tsanomaly/internal/timeseries"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestNewAbsoluteThresholdDetector_RequiresABound(t *testing.T) {
	_, err := NewAbsoluteThresholdDetector(nil, nil)
	require.ErrorIs(t, err, errs.ErrRequiredParametersNotPassed)
}

func TestAbsoluteThresholdDetector_Run(t *testing.T) {
	d, err := NewAbsoluteThresholdDetector(ptr(0), ptr(10))
	require.NoError(t, err)

	series := timeseries.New(map[int64]float64{1: 5, 2: 15, 3: -5, 4: 0})
	scores, err := d.Run(series)
	require.NoError(t, err)

	v1, _ := scores.Get(1)
	assert.Equal(t, 0.0, v1, "in-bounds point scores 0")

	v2, _ := scores.Get(2)
	assert.Equal(t, 5.0, v2, "5 over the upper bound scores 5")

	v3, _ := scores.Get(3)
	assert.Equal(t, 5.0, v3, "5 under the lower bound scores 5")
}
