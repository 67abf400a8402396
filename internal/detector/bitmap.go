package detector

import (
	"tsanomaly/internal/errs"
	"tsanomaly/internal/timeseries"
)

// bitmapMaxWindow caps lag/future window sizes regardless of what the
// series length would otherwise derive, keeping the chunk-frequency
// dictionaries bounded.
const bitmapMaxWindow = 200

// bitmapMinCombinedWindow is the least total lag+future width the
// algorithm will run with; below it there isn't enough context on either
// side of a candidate point to compare distributions meaningfully.
const bitmapMinCombinedWindow = 50

// BitmapDetector scores anomalousness by SAX-encoding the series into
// fixed-width chunks and comparing, at each point, the chunk-frequency
// distribution of a trailing lag window against a leading future window: a
// future window whose chunk makeup looks nothing like its recent history
// scores high. The dictionaries are maintained incrementally across the
// sweep rather than rebuilt at each point.
type BitmapDetector struct {
	Precision        int
	ChunkSize        int
	LagWindowSize    int
	FutureWindowSize int
}

// NewBitmapDetector builds a BitmapDetector for series, deriving window
// sizes as a percentage of its length (divided further by 16, the
// reference implementation's scaling factor for these windows) when the
// caller passes zero. The sanity check runs against these uncapped sizes
// first — ErrNotEnoughDataPoints when either window is zero, the series
// is shorter than their combined width, or the combined width doesn't
// meet the minimum — matching the reference's _sanity_check, which
// rejects on the requested window sizes before ever capping them. Only
// after that check passes are both windows clamped to bitmapMaxWindow.
func NewBitmapDetector(series *timeseries.TimeSeries, precision, chunkSize, lagWindowSize, futureWindowSize int) (*BitmapDetector, error) {
	n := series.Len()
	if precision == 0 {
		precision = bitmapPrecision
	}
	if chunkSize == 0 {
		chunkSize = bitmapChunkSize
	}
	if lagWindowSize == 0 {
		lagWindowSize = int(float64(n) * bitmapLaggingWindowPercent / 16)
	}
	if futureWindowSize == 0 {
		futureWindowSize = int(float64(n) * bitmapFutureWindowPercent / 16)
	}
	windows := lagWindowSize + futureWindowSize
	if lagWindowSize == 0 || futureWindowSize == 0 || n < windows || windows < bitmapMinCombinedWindow {
		return nil, errs.ErrNotEnoughDataPoints
	}
	if lagWindowSize > bitmapMaxWindow {
		lagWindowSize = bitmapMaxWindow
	}
	if futureWindowSize > bitmapMaxWindow {
		futureWindowSize = bitmapMaxWindow
	}
	return &BitmapDetector{
		Precision:        precision,
		ChunkSize:        chunkSize,
		LagWindowSize:    lagWindowSize,
		FutureWindowSize: futureWindowSize,
	}, nil
}

// sax encodes values into a symbol string, one character per value,
// partitioning the observed [min, max] range into precision equal-width
// sections. Each value maps to the index of the highest section whose
// lower bound it meets.
func sax(values []float64, min, max float64, precision int) string {
	if precision <= 0 {
		precision = 1
	}
	if max <= min {
		return string(make([]byte, len(values)))
	}
	step := (max - min) / float64(precision)
	out := make([]byte, len(values))
	for i, v := range values {
		level := int((v - min) / step)
		if level >= precision {
			level = precision - 1
		}
		if level < 0 {
			level = 0
		}
		out[i] = saxDigit(level)
	}
	return string(out)
}

// saxDigit maps a bucket index (0..35) to a single printable character, so
// the encoding stays one rune per value for precisions beyond 10.
func saxDigit(level int) byte {
	if level < 10 {
		return byte('0' + level)
	}
	return byte('a' + level - 10)
}

// chunkFreq builds a frequency dictionary of chunkSize-wide substrings of
// symbols, used to seed the incremental lag/future dictionaries at the
// first valid index.
func chunkFreq(symbols string, chunkSize int) map[string]int {
	freq := make(map[string]int)
	if len(symbols) < chunkSize {
		return freq
	}
	for i := 0; i+chunkSize <= len(symbols); i++ {
		freq[symbols[i:i+chunkSize]]++
	}
	return freq
}

// decrementChunk removes the chunk starting at start from freq, if it's a
// valid position in symbols.
func decrementChunk(freq map[string]int, symbols string, start, chunkSize int) {
	if start < 0 || start+chunkSize > len(symbols) {
		return
	}
	key := symbols[start : start+chunkSize]
	freq[key]--
	if freq[key] <= 0 {
		delete(freq, key)
	}
}

// incrementChunk adds the chunk starting at start to freq, if it's a valid
// position in symbols.
func incrementChunk(freq map[string]int, symbols string, start, chunkSize int) {
	if start < 0 || start+chunkSize > len(symbols) {
		return
	}
	freq[symbols[start:start+chunkSize]]++
}

// squaredDiff sums, over the union of both dictionaries' keys, the squared
// difference between future and lag chunk frequencies.
func squaredDiff(lag, fut map[string]int) float64 {
	seen := make(map[string]struct{}, len(lag)+len(fut))
	for k := range lag {
		seen[k] = struct{}{}
	}
	for k := range fut {
		seen[k] = struct{}{}
	}
	var score float64
	for k := range seen {
		d := float64(fut[k] - lag[k])
		score += d * d
	}
	return score
}

// Run produces the bitmap anomaly score series. Points outside
// [LagWindowSize, len-FutureWindowSize] score 0; they don't have enough
// lagging or leading context to compare distributions.
func (d *BitmapDetector) Run(series *timeseries.TimeSeries) (*timeseries.TimeSeries, error) {
	values := series.Values()
	timestamps := series.Timestamps()
	n := len(values)

	scores := make(map[int64]float64, n)
	for _, ts := range timestamps {
		scores[ts] = 0
	}
	if n == 0 {
		return timeseries.New(scores), nil
	}

	min, max := series.Min(0), series.Max(0)
	symbols := sax(values, min, max, d.Precision)

	L, F, c := d.LagWindowSize, d.FutureWindowSize, d.ChunkSize

	var lag, fut map[string]int
	for i := L; i <= n-F; i++ {
		switch {
		case lag == nil:
			lag = chunkFreq(symbols[i-L:i], c)
			fut = chunkFreq(symbols[i:i+F], c)
		default:
			decrementChunk(lag, symbols, i-1-L, c)
			incrementChunk(lag, symbols, i-c, c)
			decrementChunk(fut, symbols, i-1, c)
			incrementChunk(fut, symbols, i+F-c, c)
		}
		scores[timestamps[i]] = squaredDiff(lag, fut)
	}

	result := timeseries.New(scores)
	denoiseScores(result, noisePercentThreshold)
	return result, nil
}
