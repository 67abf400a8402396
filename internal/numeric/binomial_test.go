package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPbinom_Symmetric(t *testing.T) {
	// Binomial(n, 0.5) is symmetric around n/2; P(X<=n) must be 1.
	assert.InDelta(t, 1.0, Pbinom(10, 10), 1e-9)
	assert.InDelta(t, 0.5, Pbinom(5, 10), 0.2, "median of a symmetric binomial sits near n/2")
}

func TestQbinom_MatchesItsOwnCDF(t *testing.T) {
	n := 20
	for _, p := range []float64{0.5, 0.9, 0.99} {
		k := Qbinom(p, n)
		assert.GreaterOrEqual(t, Pbinom(float64(k), n), p-1e-6,
			"qbinom(p,n) must be the smallest k with CDF(k) >= p")
	}
}

func TestQbinom_Monotonic(t *testing.T) {
	n := 30
	prev := Qbinom(0.1, n)
	for _, p := range []float64{0.3, 0.5, 0.7, 0.9, 0.99} {
		k := Qbinom(p, n)
		assert.GreaterOrEqual(t, k, prev)
		prev = k
	}
}
