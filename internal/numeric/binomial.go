package numeric

import "gonum.org/v1/gonum/stat/distuv"

// symmetricBinomial returns a Binomial{N: n, P: 0.5} distribution, the
// success-probability-1/2 binomial the sign-test detector's null hypothesis
// is built on.
func symmetricBinomial(n float64) distuv.Binomial {
	return distuv.Binomial{N: n, P: 0.5}
}

// Qbinom is the quantile function for a Binomial(n, 0.5): the smallest k
// such that P(X <= k) >= p, matching R's qbinom. Backed by gonum's
// distuv.Binomial, which evaluates the regularized incomplete beta function
// rather than the closed-form recurrence luminol uses — at least as accurate
// for every n, so no separate large-n approximation is needed here.
func Qbinom(p float64, n int) int {
	return int(symmetricBinomial(float64(n)).Quantile(p))
}

// Pbinom is the CDF for a Binomial(n, 0.5): P(X <= k), matching R's pbinom.
func Pbinom(k float64, n int) float64 {
	return symmetricBinomial(float64(n)).CDF(k)
}
