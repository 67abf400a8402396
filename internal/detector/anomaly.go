package detector

// Anomaly is one anomalous interval found in a score series: the
// [StartTimestamp, EndTimestamp] span over threshold, the peak score found
// in it, and the ExactTimestamp singled out by the refine pass as the
// single most anomalous point in the interval.
type Anomaly struct {
	StartTimestamp int64
	EndTimestamp   int64
	ExactTimestamp int64
	AnomalyScore   float64
}
