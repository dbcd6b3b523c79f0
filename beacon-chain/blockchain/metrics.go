package blockchain

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/store"
)

var (
	beaconFinalizedEpoch = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "beacon_finalized_epoch",
		Help: "Last finalized epoch of the fork choice store",
	})
	beaconCurrentJustifiedEpoch = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "beacon_current_justified_epoch",
		Help: "Current justified epoch of the fork choice store",
	})
	beaconBestJustifiedEpoch = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "beacon_best_justified_epoch",
		Help: "Best justified epoch of the fork choice store",
	})
	beaconHeadSlot = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "beacon_head_slot",
		Help: "Slot of the head block of the beacon chain",
	})
	processedBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "beacon_processed_blocks_total",
		Help: "Count the number of blocks imported into fork choice",
	})
	rejectedBlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "beacon_rejected_blocks_total",
		Help: "Count the number of blocks rejected by fork choice, by reason",
	}, []string{"reason"})
	attestationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "beacon_fork_choice_attestations_total",
		Help: "Count the number of attestations submitted to fork choice, by outcome",
	}, []string{"outcome"})
	checkpointStateHit = promauto.NewCounter(prometheus.CounterOpts{
		Name: "check_point_state_cache_hit",
		Help: "The number of check point state requests that are present in the store.",
	})
	checkpointStateMiss = promauto.NewCounter(prometheus.CounterOpts{
		Name: "check_point_state_cache_miss",
		Help: "The number of check point state requests that had to be computed.",
	})
)

func reportCheckpoints(view store.ReadOnlyStore) {
	beaconFinalizedEpoch.Set(float64(view.FinalizedCheckpoint().Epoch))
	beaconCurrentJustifiedEpoch.Set(float64(view.JustifiedCheckpoint().Epoch))
	beaconBestJustifiedEpoch.Set(float64(view.BestJustifiedCheckpoint().Epoch))
}
