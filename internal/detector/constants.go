package detector

// Tuning constants carried over from the reference implementation's
// constants module. Kept together here rather than scattered per-algorithm
// so the defaults are easy to audit in one place.
const (
	noisePercentThreshold = 0.001

	bitmapLaggingWindowPercent = 0.2
	bitmapFutureWindowPercent  = 0.2
	bitmapChunkSize            = 2
	bitmapPrecision            = 4

	emaSmoothingFactor      = 0.2
	emaLagWindowSizePercent = 0.2

	derivativeSmoothingFactor = 0.2

	defaultEmaWeight    = 0.65
	defaultSignificance = 0.94

	signTestConfidenceDefault = 0.01
)
