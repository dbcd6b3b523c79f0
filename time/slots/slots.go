// Package slots includes the slot and epoch arithmetic used by fork choice.
package slots

import (
	"fmt"
	"math"

	"github.com/prysmaticlabs/ghost/config/params"
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
)

// ToEpoch returns the epoch number of the input slot.
//
// Spec pseudocode definition:
//
//	def compute_epoch_at_slot(slot: Slot) -> Epoch:
//	  """
//	  Return the epoch number at ``slot``.
//	  """
//	  return Epoch(slot // SLOTS_PER_EPOCH)
func ToEpoch(slot primitives.Slot) primitives.Epoch {
	return primitives.Epoch(slot / params.BeaconConfig().SlotsPerEpoch)
}

// EpochStart returns the first slot number of the
// current epoch.
//
// Spec pseudocode definition:
//
//	def compute_start_slot_at_epoch(epoch: Epoch) -> Slot:
//	  """
//	  Return the start slot of ``epoch``.
//	  """
//	  return Slot(epoch * SLOTS_PER_EPOCH)
func EpochStart(epoch primitives.Epoch) (primitives.Slot, error) {
	slotsPerEpoch := uint64(params.BeaconConfig().SlotsPerEpoch)
	if uint64(epoch) > math.MaxUint64/slotsPerEpoch {
		return 0, fmt.Errorf("start slot calculation overflows: epoch %d", epoch)
	}
	return primitives.Slot(uint64(epoch) * slotsPerEpoch), nil
}

// UnsafeEpochStart is a version of EpochStart that panics if there is an overflow. It can be safely used by code
// that first guarantees epoch <= MaxSafeEpoch.
func UnsafeEpochStart(epoch primitives.Epoch) primitives.Slot {
	es, err := EpochStart(epoch)
	if err != nil {
		panic(err) // lint:nopanic -- callers bound the epoch.
	}
	return es
}

// IsEpochStart returns true if the given slot number is an epoch starting slot
// number.
func IsEpochStart(slot primitives.Slot) bool {
	return slot%params.BeaconConfig().SlotsPerEpoch == 0
}

// SinceEpochStarts returns number of slots since the start of the epoch.
//
// Spec pseudocode definition:
//
//	def compute_slots_since_epoch_start(slot: Slot) -> int:
//	  return slot - compute_start_slot_at_epoch(compute_epoch_at_slot(slot))
func SinceEpochStarts(slot primitives.Slot) primitives.Slot {
	return slot % params.BeaconConfig().SlotsPerEpoch
}

// AtTime returns the slot that wall time `now` falls into for a chain started at genesisTime.
// Times before genesis map to the genesis slot.
//
// Spec pseudocode definition:
//
//	def get_current_slot(store: Store) -> Slot:
//	  return Slot(GENESIS_SLOT + get_slots_since_genesis(store))
func AtTime(genesisTime, now uint64) primitives.Slot {
	cfg := params.BeaconConfig()
	if now < genesisTime {
		return cfg.GenesisSlot
	}
	return cfg.GenesisSlot.Add((now - genesisTime) / cfg.SecondsPerSlot)
}

// StartTime returns the wall time, in seconds, at which the slot begins.
func StartTime(genesisTime uint64, slot primitives.Slot) (uint64, error) {
	secondsPerSlot := params.BeaconConfig().SecondsPerSlot
	if uint64(slot) > (math.MaxUint64-genesisTime)/secondsPerSlot {
		return 0, fmt.Errorf("slot start time overflows: slot %d", slot)
	}
	return genesisTime + uint64(slot)*secondsPerSlot, nil
}

// PrevEpoch returns the previous epoch of the slot, bounded at the genesis epoch.
func PrevEpoch(slot primitives.Slot) primitives.Epoch {
	epoch := ToEpoch(slot)
	if epoch <= params.BeaconConfig().GenesisEpoch {
		return params.BeaconConfig().GenesisEpoch
	}
	return epoch - 1
}
