package forkchoice

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var headComputeSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "forkchoice_head_compute_seconds",
	Help:    "Time taken to compute the fork choice head from a store view.",
	Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
})
