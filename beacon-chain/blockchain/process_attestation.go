package blockchain

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/store"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/ghost/consensus-types/attestation"
	"github.com/prysmaticlabs/ghost/time/slots"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
)

// OnAttestation is called whenever an attestation is received, verifies the attestation is valid and saves
// it to the store. It returns the number of validators whose latest message changed.
//
// Spec pseudocode definition:
//
//	def on_attestation(store: Store, attestation: Attestation) -> None:
//	  target = attestation.data.target
//
//	  # Attestations must be from the current or previous epoch
//	  current_epoch = compute_epoch_at_slot(get_current_slot(store))
//	  # Use GENESIS_EPOCH for previous when genesis to avoid underflow
//	  previous_epoch = current_epoch - 1 if current_epoch > GENESIS_EPOCH else GENESIS_EPOCH
//	  assert target.epoch in [current_epoch, previous_epoch]
//	  assert target.epoch == compute_epoch_at_slot(attestation.data.slot)
//
//	  # Attestations can only affect the fork choice of subsequent slots.
//	  # Delay consideration in the fork choice until their slot is in the past.
//	  assert get_current_slot(store) >= attestation.data.slot + 1
//
//	  # Attestations target be for a known block. If target block is unknown, delay consideration until the block is found
//	  assert target.root in store.blocks
//	  # Attestations must be for a known block. If block is unknown, delay consideration until the block is found
//	  assert attestation.data.beacon_block_root in store.blocks
//	  # Attestations must not be for blocks in the future. If not, the attestation should not be considered
//	  assert store.blocks[attestation.data.beacon_block_root].slot <= attestation.data.slot
//
//	  # Store target checkpoint state if not yet seen
//	  if target not in store.checkpoint_states:
//	    base_state = copy(store.block_states[target.root])
//	    process_slots(base_state, compute_start_slot_at_epoch(target.epoch))
//	    store.checkpoint_states[target] = base_state
//	  target_state = store.checkpoint_states[target]
//
//	  # Get state at the `target` to validate attestation and calculate the committees
//	  indexed_attestation = get_indexed_attestation(target_state, attestation)
//	  assert is_valid_indexed_attestation(target_state, indexed_attestation)
//
//	  # Update latest messages
//	  for i in indexed_attestation.attesting_indices:
//	    if i not in store.latest_messages or target.epoch > store.latest_messages[i].epoch:
//	      store.latest_messages[i] = LatestMessage(epoch=target.epoch, root=attestation.data.beacon_block_root)
func (s *Service) OnAttestation(ctx context.Context, tx *store.Transaction, att *attestation.Attestation) (int, error) {
	ctx, span := trace.StartSpan(ctx, "blockChain.onAttestation")
	defer span.End()

	if att.IsNil() {
		return 0, invalidAttestation{error: ErrNilAttestation}
	}
	if err := verifyAttestationTiming(tx, att.Data); err != nil {
		return 0, err
	}
	if err := verifyAttestedBlocks(tx, att.Data); err != nil {
		return 0, err
	}

	target := att.Data.Target
	targetState, err := s.ensureCheckpointState(ctx, tx, target)
	if err != nil {
		return 0, errors.Wrapf(err, "could not get checkpoint state for target %s", target)
	}

	indexed, err := s.cfg.AttestationVerifier.IndexedAttestation(ctx, targetState, att)
	if err != nil {
		return 0, invalidAttestation{error: errors.Wrap(ErrInvalidAttestation, err.Error())}
	}
	if err := s.cfg.AttestationVerifier.VerifyIndexedAttestation(ctx, targetState, indexed); err != nil {
		return 0, invalidAttestation{error: errors.Wrap(ErrInvalidAttestation, err.Error())}
	}

	updated := 0
	for _, idx := range indexed.AttestingIndices {
		msg, ok := tx.LatestMessage(idx)
		if ok && target.Epoch <= msg.Epoch {
			continue
		}
		tx.SetLatestMessage(idx, types.LatestMessage{Epoch: target.Epoch, Root: att.Data.BeaconBlockRoot})
		updated++
	}
	log.WithFields(logrus.Fields{
		"slot":        att.Data.Slot,
		"targetEpoch": target.Epoch,
		"blockRoot":   rootString(att.Data.BeaconBlockRoot),
		"attesters":   len(indexed.AttestingIndices),
		"updated":     updated,
	}).Debug("Applied attestation to fork choice")
	return updated, nil
}

// verifyAttestationTiming checks the target epoch against the store clock and the
// attestation slot, then that the attestation's slot has passed.
func verifyAttestationTiming(view store.ReadOnlyStore, data *attestation.Data) error {
	currentSlot := view.CurrentSlot()
	currentEpoch := slots.ToEpoch(currentSlot)
	previousEpoch := slots.PrevEpoch(currentSlot)
	target := data.Target
	if target.Epoch != currentEpoch && target.Epoch != previousEpoch {
		return invalidAttestation{error: errors.Wrapf(
			ErrAttestationTargetEpoch, "target epoch %d, current epoch %d", target.Epoch, currentEpoch)}
	}
	if slotEpoch := slots.ToEpoch(data.Slot); target.Epoch != slotEpoch {
		return invalidAttestation{error: errors.Wrapf(
			ErrAttestationSlotMismatch, "target epoch %d, slot %d is in epoch %d", target.Epoch, data.Slot, slotEpoch)}
	}
	if currentSlot <= data.Slot {
		return deferredAttestation{error: errors.Wrapf(
			ErrAttestationNotFromPast, "attestation slot %d, current slot %d", data.Slot, currentSlot)}
	}
	return nil
}

// verifyAttestedBlocks checks the target and attested blocks are known and that the
// attested block is not later than the attestation.
func verifyAttestedBlocks(view store.ReadOnlyStore, data *attestation.Data) error {
	if !view.HasBlock(data.Target.Root) {
		return deferredAttestation{error: errors.Wrapf(ErrUnknownBlock, "target root %#x", data.Target.Root)}
	}
	b, ok := view.Block(data.BeaconBlockRoot)
	if !ok {
		return deferredAttestation{error: errors.Wrapf(ErrUnknownBlock, "beacon block root %#x", data.BeaconBlockRoot)}
	}
	if blockSlot := b.Block().Slot(); blockSlot > data.Slot {
		return invalidAttestation{error: errors.Wrapf(
			ErrAttestationBlockFromFuture, "block slot %d, attestation slot %d", blockSlot, data.Slot)}
	}
	return nil
}
