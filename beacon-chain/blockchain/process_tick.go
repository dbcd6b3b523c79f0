package blockchain

import (
	"context"

	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/store"
	"github.com/prysmaticlabs/ghost/time/slots"
	"github.com/sirupsen/logrus"
)

// OnTick sets the store time and promotes the best justified checkpoint when the clock
// enters a new epoch. A time earlier than the store's is ignored.
//
// Spec pseudocode definition:
//
//	def on_tick(store: Store, time: uint64) -> None:
//	  previous_slot = get_current_slot(store)
//
//	  # update store time
//	  store.time = time
//
//	  current_slot = get_current_slot(store)
//	  # Not a new epoch, return
//	  if not (current_slot > previous_slot and compute_slots_since_epoch_start(current_slot) == 0):
//	    return
//	  # Update store.justified_checkpoint if a better checkpoint is known
//	  if store.best_justified_checkpoint.epoch > store.justified_checkpoint.epoch:
//	    store.justified_checkpoint = store.best_justified_checkpoint
func (s *Service) OnTick(_ context.Context, tx *store.Transaction, time uint64) {
	if time < tx.Time() {
		log.WithFields(logrus.Fields{
			"time":      time,
			"storeTime": tx.Time(),
		}).Debug("Ignoring tick earlier than store time")
		return
	}
	previousSlot := tx.CurrentSlot()
	tx.SetTime(time)
	currentSlot := tx.CurrentSlot()

	// A tick that jumps over an epoch start still counts as entering the new epoch.
	if slots.ToEpoch(currentSlot) <= slots.ToEpoch(previousSlot) {
		return
	}
	best := tx.BestJustifiedCheckpoint()
	if best.Epoch > tx.JustifiedCheckpoint().Epoch {
		tx.SetJustifiedCheckpoint(best)
		log.WithField("checkpoint", best.String()).Debug("Promoted best justified checkpoint")
	}
}
