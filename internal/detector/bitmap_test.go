package detector

import (
	"testing"

	"tsanomaly/internal/errs"
	"tsanomaly/internal/timeseries"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildBitmapSeries(n int, spikeAt int) *timeseries.TimeSeries {
	points := make(map[int64]float64, n)
	for i := 0; i < n; i++ {
		v := 1.0
		if i == spikeAt {
			v = 10.0
		}
		points[int64(i)] = v
	}
	return timeseries.New(points)
}

func TestNewBitmapDetector_RejectsTooFewPoints(t *testing.T) {
	series := buildBitmapSeries(10, -1)
	_, err := NewBitmapDetector(series, 0, 0, 10, 10)
	assert.ErrorIs(t, err, errs.ErrNotEnoughDataPoints)
}

func TestNewBitmapDetector_CapsWindowsAtMax(t *testing.T) {
	// The sanity check must run against the uncapped window sizes: a
	// series long enough to hold them (n=1000, windows sum to 500) passes
	// the check, and only afterward do the individual windows clamp down
	// to bitmapMaxWindow.
	series := buildBitmapSeries(1000, -1)
	d, err := NewBitmapDetector(series, 0, 0, 250, 250)
	require.NoError(t, err)
	assert.Equal(t, bitmapMaxWindow, d.LagWindowSize)
	assert.Equal(t, bitmapMaxWindow, d.FutureWindowSize)
}

func TestNewBitmapDetector_RejectsWindowsExceedingSeriesLengthBeforeCapping(t *testing.T) {
	// n=250 with uncapped windows summing to 310 must fail even though,
	// after capping at bitmapMaxWindow, 200+10=210 would fit within n.
	series := buildBitmapSeries(250, -1)
	_, err := NewBitmapDetector(series, 0, 0, 300, 10)
	assert.ErrorIs(t, err, errs.ErrNotEnoughDataPoints)
}

func TestBitmapDetector_EdgesScoreZero(t *testing.T) {
	series := buildBitmapSeries(300, 150)
	d, err := NewBitmapDetector(series, 0, 0, 40, 40)
	require.NoError(t, err)

	scores, err := d.Run(series)
	require.NoError(t, err)

	for i := 0; i < d.LagWindowSize; i++ {
		v, _ := scores.Get(int64(i))
		assert.Equal(t, 0.0, v, "points before the lag window has filled can't be scored")
	}
	for i := 300 - d.FutureWindowSize + 1; i < 300; i++ {
		v, _ := scores.Get(int64(i))
		assert.Equal(t, 0.0, v, "points without a full future window can't be scored")
	}
}

func TestBitmapDetector_DenoisedScoresAreNonNegative(t *testing.T) {
	series := buildBitmapSeries(300, 150)
	d, err := NewBitmapDetector(series, 0, 0, 40, 40)
	require.NoError(t, err)

	scores, err := d.Run(series)
	require.NoError(t, err)

	max := scores.Max(0)
	for _, ts := range scores.Timestamps() {
		v, _ := scores.Get(ts)
		assert.GreaterOrEqual(t, v, 0.0)
		if max > 0 {
			assert.False(t, v > 0 && v < 0.001*max, "denoise must zero anything below 0.1%% of the max score")
		}
	}
}

func TestBitmapDetector_SpikeRegionScoresAboveFlatRegion(t *testing.T) {
	series := buildBitmapSeries(300, 150)
	d, err := NewBitmapDetector(series, 0, 0, 40, 40)
	require.NoError(t, err)

	scores, err := d.Run(series)
	require.NoError(t, err)

	nearSpike, _ := scores.Get(150)
	flat, _ := scores.Get(200)
	assert.GreaterOrEqual(t, nearSpike, flat)
}

func TestSax_PartitionsIntoEqualWidthSections(t *testing.T) {
	values := []float64{0, 25, 50, 75, 100}
	symbols := sax(values, 0, 100, 4)
	assert.Equal(t, "01233", symbols, "each bucket is [lower, lower+step); the max value falls in the last bucket")
}

func TestChunkFreq_CountsOverlappingSubstrings(t *testing.T) {
	freq := chunkFreq("aabaa", 2)
	assert.Equal(t, 2, freq["aa"])
	assert.Equal(t, 1, freq["ab"])
	assert.Equal(t, 1, freq["ba"])
}
