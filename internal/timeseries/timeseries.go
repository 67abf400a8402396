// Package timeseries implements the ordered timestamp->value container that
// every detector and correlator algorithm operates on.
package timeseries

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// TimeSeries is a sequence of (timestamp, value) pairs in strictly ascending
// timestamp order. Timestamps are opaque integers to the algorithms above —
// only ordering and subtraction matter, so callers may use epoch seconds or
// milliseconds as long as they're consistent within a single analysis.
type TimeSeries struct {
	timestamps []int64
	values     []float64
}

// New builds a TimeSeries from a mapping, sorting keys ascending and
// dropping any timestamp whose value is NaN (the Go stand-in for Python's
// None/null sentinel, since float64 has no separate null state).
func New(series map[int64]float64) *TimeSeries {
	ts := &TimeSeries{}
	keys := make([]int64, 0, len(series))
	for k, v := range series {
		if math.IsNaN(v) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	ts.timestamps = keys
	ts.values = make([]float64, len(keys))
	for i, k := range keys {
		ts.values[i] = series[k]
	}
	return ts
}

// newFromParallel builds a TimeSeries from already-sorted, already-aligned
// parallel slices without re-validating order; used internally by
// operations that already maintain the invariant.
func newFromParallel(timestamps []int64, values []float64) *TimeSeries {
	return &TimeSeries{timestamps: timestamps, values: values}
}

// Len returns the number of points.
func (t *TimeSeries) Len() int { return len(t.timestamps) }

// Timestamps returns the backing timestamp slice. Callers must not mutate it.
func (t *TimeSeries) Timestamps() []int64 { return t.timestamps }

// Values returns the backing value slice. Callers must not mutate it.
func (t *TimeSeries) Values() []float64 { return t.values }

// Start returns the earliest timestamp, or ok=false if empty.
func (t *TimeSeries) Start() (int64, bool) {
	if len(t.timestamps) == 0 {
		return 0, false
	}
	return t.timestamps[0], true
}

// End returns the latest timestamp, or ok=false if empty.
func (t *TimeSeries) End() (int64, bool) {
	if len(t.timestamps) == 0 {
		return 0, false
	}
	return t.timestamps[len(t.timestamps)-1], true
}

// Get returns the value at an exact timestamp match.
func (t *TimeSeries) Get(timestamp int64) (float64, error) {
	pos := t.indexOf(timestamp)
	if pos < 0 {
		return 0, fmt.Errorf("timeseries: missing timestamp %d", timestamp)
	}
	return t.values[pos], nil
}

// Set inserts or updates the value at timestamp, preserving ascending order.
// Passing math.NaN() deletes the timestamp, mirroring luminol's
// __setitem__(key, None) semantics.
func (t *TimeSeries) Set(timestamp int64, value float64) {
	pos := t.indexOf(timestamp)
	if pos >= 0 {
		if math.IsNaN(value) {
			t.timestamps = append(t.timestamps[:pos], t.timestamps[pos+1:]...)
			t.values = append(t.values[:pos], t.values[pos+1:]...)
			return
		}
		t.values[pos] = value
		return
	}
	if math.IsNaN(value) {
		return
	}
	insertAt := sort.Search(len(t.timestamps), func(i int) bool { return t.timestamps[i] >= timestamp })
	t.timestamps = append(t.timestamps, 0)
	copy(t.timestamps[insertAt+1:], t.timestamps[insertAt:])
	t.timestamps[insertAt] = timestamp
	t.values = append(t.values, 0)
	copy(t.values[insertAt+1:], t.values[insertAt:])
	t.values[insertAt] = value
}

func (t *TimeSeries) indexOf(timestamp int64) int {
	pos := sort.Search(len(t.timestamps), func(i int) bool { return t.timestamps[i] >= timestamp })
	if pos < len(t.timestamps) && t.timestamps[pos] == timestamp {
		return pos
	}
	return -1
}

// Contains reports whether timestamp exists in the series.
func (t *TimeSeries) Contains(timestamp int64) bool { return t.indexOf(timestamp) >= 0 }

// Items returns the (timestamp, value) pairs in order.
func (t *TimeSeries) Items() [][2]float64 {
	out := make([][2]float64, len(t.timestamps))
	for i, ts := range t.timestamps {
		out[i] = [2]float64{float64(ts), t.values[i]}
	}
	return out
}

type binaryOp func(a, b float64) (float64, bool)

func addOp(a, b float64) (float64, bool) { return a + b, true }
func subOp(a, b float64) (float64, bool) { return a - b, true }
func mulOp(a, b float64) (float64, bool) { return a * b, true }
func divOp(a, b float64) (float64, bool) {
	if b == 0 {
		return 0, false
	}
	return a / b, true
}

func (t *TimeSeries) genericBinaryOp(other *TimeSeries, op binaryOp) (*TimeSeries, error) {
	output := make(map[int64]float64)
	for i, ts := range t.timestamps {
		if otherPos := other.indexOf(ts); otherPos >= 0 {
			if result, ok := op(t.values[i], other.values[otherPos]); ok {
				output[ts] = result
			}
		}
	}
	if len(output) == 0 {
		return nil, fmt.Errorf("timeseries: empty result")
	}
	return New(output), nil
}

func (t *TimeSeries) genericScalarOp(scalar float64, op binaryOp) (*TimeSeries, error) {
	output := make(map[int64]float64)
	for i, ts := range t.timestamps {
		if result, ok := op(t.values[i], scalar); ok {
			output[ts] = result
		}
	}
	if len(output) == 0 {
		return nil, fmt.Errorf("timeseries: empty result")
	}
	return New(output), nil
}

// Add returns the point-wise sum, intersecting timestamps with other.
func (t *TimeSeries) Add(other *TimeSeries) (*TimeSeries, error) { return t.genericBinaryOp(other, addOp) }

// Sub returns the point-wise difference, intersecting timestamps with other.
func (t *TimeSeries) Sub(other *TimeSeries) (*TimeSeries, error) { return t.genericBinaryOp(other, subOp) }

// Mul returns the point-wise product, intersecting timestamps with other.
func (t *TimeSeries) Mul(other *TimeSeries) (*TimeSeries, error) { return t.genericBinaryOp(other, mulOp) }

// Div returns the point-wise quotient, intersecting timestamps with other and
// dropping entries where other's value is zero.
func (t *TimeSeries) Div(other *TimeSeries) (*TimeSeries, error) { return t.genericBinaryOp(other, divOp) }

// AddScalar adds a constant to every value.
func (t *TimeSeries) AddScalar(c float64) (*TimeSeries, error) { return t.genericScalarOp(c, addOp) }

// SubScalar subtracts a constant from every value.
func (t *TimeSeries) SubScalar(c float64) (*TimeSeries, error) { return t.genericScalarOp(c, subOp) }

// MulScalar multiplies every value by a constant.
func (t *TimeSeries) MulScalar(c float64) (*TimeSeries, error) { return t.genericScalarOp(c, mulOp) }

// DivScalar divides every value by a constant, dropping entries if c is zero.
func (t *TimeSeries) DivScalar(c float64) (*TimeSeries, error) { return t.genericScalarOp(c, divOp) }

// Align produces two series over the union of timestamps. At a timestamp
// present on only one side, the side whose current timestamp is smaller
// advances and contributes its own value; the other side's aligned value is
// its own most-recently emitted value, not the value it will reach in the
// future (only before the other side has emitted anything is its first
// value used). Once one side is exhausted, the still-advancing side's trailing
// timestamps are filled with the exhausted side's last known value. This is
// the gap-fill policy arithmetic and correlation depend on (see
// cross-correlator) — getting it backwards (peeking ahead instead of
// carrying forward) silently breaks the correlation contract.
func Align(a, b *TimeSeries) (*TimeSeries, *TimeSeries) {
	alignedA := make(map[int64]float64)
	alignedB := make(map[int64]float64)

	var lastA, lastB float64
	haveA, haveB := false, false

	i, j := 0, 0
	for i < len(a.timestamps) && j < len(b.timestamps) {
		ta, tb := a.timestamps[i], b.timestamps[j]
		switch {
		case ta == tb:
			alignedA[ta] = a.values[i]
			alignedB[tb] = b.values[j]
			lastA, lastB = a.values[i], b.values[j]
			haveA, haveB = true, true
			i++
			j++
		case ta < tb:
			alignedA[ta] = a.values[i]
			if haveB {
				alignedB[ta] = lastB
			} else {
				alignedB[ta] = b.values[j]
			}
			lastA = a.values[i]
			haveA = true
			i++
		default:
			alignedB[tb] = b.values[j]
			if haveA {
				alignedA[tb] = lastA
			} else {
				alignedA[tb] = a.values[i]
			}
			lastB = b.values[j]
			haveB = true
			j++
		}
	}
	// Tail of a: b is exhausted, fill with b's last known value.
	for ; i < len(a.timestamps); i++ {
		alignedA[a.timestamps[i]] = a.values[i]
		alignedB[a.timestamps[i]] = b.values[len(b.values)-1]
	}
	// Tail of b: a is exhausted, fill with a's last known value.
	for ; j < len(b.timestamps); j++ {
		alignedA[b.timestamps[j]] = a.values[len(a.values)-1]
		alignedB[b.timestamps[j]] = b.values[j]
	}
	return New(alignedA), New(alignedB)
}

// Crop returns a new TimeSeries with the points whose timestamps fall in
// [start, end] inclusive on both bounds.
func (t *TimeSeries) Crop(start, end int64) (*TimeSeries, error) {
	output := make(map[int64]float64)
	for i, ts := range t.timestamps {
		if ts >= start && ts <= end {
			output[ts] = t.values[i]
		}
	}
	if len(output) == 0 {
		return nil, fmt.Errorf("timeseries: empty result")
	}
	return New(output), nil
}

// Normalize linearly maps every value to (v-min)/(max-min) in place. A no-op
// when max is zero (matches luminol's normalize(), which only checks
// truthiness of the maximum).
func (t *TimeSeries) Normalize() {
	maximum := t.Max(0)
	if maximum == 0 {
		return
	}
	minimum := t.Min(0)
	span := maximum - minimum
	for i, v := range t.values {
		t.values[i] = (v - minimum) / span
	}
}

// Smooth returns a new series that is the point-wise average of a forward
// EMA pass and a backward EMA pass, where alpha is the weight carried by the
// running state (not the new point).
func (t *TimeSeries) Smooth(alpha float64) *TimeSeries {
	n := len(t.values)
	if n == 0 {
		return newFromParallel(nil, nil)
	}
	forward := make([]float64, n)
	backward := make([]float64, n)
	pre := t.values[0]
	for i, v := range t.values {
		forward[i] = alpha*pre + (1-alpha)*v
		pre = forward[i]
	}
	next := t.values[n-1]
	for i := n - 1; i >= 0; i-- {
		backward[i] = alpha*next + (1-alpha)*t.values[i]
		next = backward[i]
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = (forward[i] + backward[i]) / 2
	}
	timestamps := make([]int64, n)
	copy(timestamps, t.timestamps)
	return newFromParallel(timestamps, out)
}

// AddOffset adds delta to every timestamp, in place.
func (t *TimeSeries) AddOffset(delta int64) {
	for i := range t.timestamps {
		t.timestamps[i] += delta
	}
}

// Average returns the mean, or def if the series is empty.
func (t *TimeSeries) Average(def float64) float64 {
	if len(t.values) == 0 {
		return def
	}
	return stat.Mean(t.values, nil)
}

// Median returns the median, or def if the series is empty.
func (t *TimeSeries) Median(def float64) float64 {
	if len(t.values) == 0 {
		return def
	}
	return t.Percentile(50, def)
}

// Max returns the maximum value, or def if the series is empty.
func (t *TimeSeries) Max(def float64) float64 {
	if len(t.values) == 0 {
		return def
	}
	m := t.values[0]
	for _, v := range t.values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Min returns the minimum value, or def if the series is empty.
func (t *TimeSeries) Min(def float64) float64 {
	if len(t.values) == 0 {
		return def
	}
	m := t.values[0]
	for _, v := range t.values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Percentile returns the Nth percentile value, or def if the series is
// empty.
func (t *TimeSeries) Percentile(n float64, def float64) float64 {
	if len(t.values) == 0 {
		return def
	}
	sorted := make([]float64, len(t.values))
	copy(sorted, t.values)
	sort.Float64s(sorted)
	return stat.Quantile(n/100, stat.Empirical, sorted, nil)
}

// Stdev returns the population standard deviation, or def if the series is
// empty.
func (t *TimeSeries) Stdev(def float64) float64 {
	if len(t.values) == 0 {
		return def
	}
	mean := stat.Mean(t.values, nil)
	var sumSq float64
	for _, v := range t.values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(t.values)))
}

// Sum returns the sum of all values, or def if the series is empty.
func (t *TimeSeries) Sum(def float64) float64 {
	if len(t.values) == 0 {
		return def
	}
	var s float64
	for _, v := range t.values {
		s += v
	}
	return s
}

// Clone returns a deep copy.
func (t *TimeSeries) Clone() *TimeSeries {
	timestamps := make([]int64, len(t.timestamps))
	copy(timestamps, t.timestamps)
	values := make([]float64, len(t.values))
	copy(values, t.values)
	return newFromParallel(timestamps, values)
}

// ToMap returns the series as a plain mapping, the shape external
// collaborators (CSV ingestion, HTTP handlers) exchange with the core.
func (t *TimeSeries) ToMap() map[int64]float64 {
	out := make(map[int64]float64, len(t.timestamps))
	for i, ts := range t.timestamps {
		out[ts] = t.values[i]
	}
	return out
}

func (t *TimeSeries) String() string {
	start, _ := t.Start()
	end, _ := t.End()
	return fmt.Sprintf("TimeSeries<start=%d, end=%d, n=%d>", start, end, t.Len())
}
