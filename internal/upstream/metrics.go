package upstream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "safety_dashboard",
		Subsystem: "upstream",
		Name:      "fetch_total",
		Help:      "Upstream fetch attempts by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "safety_dashboard",
		Subsystem: "upstream",
		Name:      "fetch_duration_seconds",
		Help:      "Upstream fetch latency by endpoint, including retries.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})
)

const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

func observeFetch(endpoint string, err error, seconds float64) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeError
	}
	fetchTotal.WithLabelValues(endpoint, outcome).Inc()
	fetchDuration.WithLabelValues(endpoint).Observe(seconds)
}
