package correlator

// Tuning constants for the cross-correlation algorithm, carried over from
// the reference implementation's constants module.
const (
	xcorrShiftSeconds = 60
	xcorrShiftImpact  = 0.05

	useAnomalyScoreDefault = true
)
