package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forkchoice_store_commits_total",
		Help: "Count the number of store transactions that published a new snapshot.",
	})
	persistedCommitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forkchoice_store_persisted_commits_total",
		Help: "Count the number of commits written by the persister.",
	})
	persistFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forkchoice_store_persist_failures_total",
		Help: "Count the number of commits the persister failed to write.",
	})
	persistQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "forkchoice_store_persist_queue_depth",
		Help: "Number of commits waiting to be persisted.",
	})
)
