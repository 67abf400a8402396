// Package numeric collects small numeric helpers shared by the detector
// algorithms: exponential moving average and the binomial quantile/CDF used
// by the sign-test detector.
package numeric

// EMA computes the exponential moving average of points with smoothing
// factor alpha. e[0] = points[0]; e[i] = alpha*points[i] + (1-alpha)*e[i-1].
// The running state carries weight (1-alpha), the new sample carries alpha —
// callers must match this convention, it is not symmetric.
func EMA(alpha float64, points []float64) []float64 {
	if len(points) == 0 {
		return nil
	}
	ema := make([]float64, len(points))
	ema[0] = points[0]
	for i := 1; i < len(points); i++ {
		ema[i] = alpha*points[i] + (1-alpha)*ema[i-1]
	}
	return ema
}
