package api

import "github.com/prometheus/client_golang/prometheus"

var (
	detectRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tsanomaly_detect_requests_total",
			Help: "Number of detect requests, labeled by algorithm and outcome.",
		},
		[]string{"algorithm", "outcome"},
	)

	anomaliesFound = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tsanomaly_anomalies_found_total",
			Help: "Number of anomalies returned by detect requests, labeled by series.",
		},
		[]string{"series"},
	)

	detectDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tsanomaly_detect_duration_seconds",
			Help:    "Time spent running a detect request.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"algorithm"},
	)
)

func init() {
	prometheus.MustRegister(detectRequests, anomaliesFound, detectDuration)
}
