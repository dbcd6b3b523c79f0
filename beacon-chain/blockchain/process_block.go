package blockchain

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/store"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/ghost/beacon-chain/state"
	"github.com/prysmaticlabs/ghost/config/params"
	"github.com/prysmaticlabs/ghost/consensus-types/interfaces"
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
	"github.com/prysmaticlabs/ghost/time/slots"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
)

// BlockImportResult is handed back to proposal and attestation bookkeeping after a
// successful import.
type BlockImportResult struct {
	Root      [32]byte
	PreState  state.ReadOnlyBeaconState
	Block     interfaces.ReadOnlySignedBeaconBlock
	PostState state.ReadOnlyBeaconState
}

// OnBlock is called when a gossip block is received. It runs regular state transition on the block.
// Nothing is written to tx unless every check and the state transition succeed.
//
// Spec pseudocode definition:
//
//	def on_block(store: Store, signed_block: SignedBeaconBlock) -> None:
//	  block = signed_block.message
//	  # Parent block must be known
//	  assert block.parent_root in store.block_states
//	  # Make a copy of the state to avoid mutability issues
//	  pre_state = copy(store.block_states[block.parent_root])
//	  # Blocks cannot be in the future. If they are, their consideration must be delayed until the are in the past.
//	  assert get_current_slot(store) >= block.slot
//
//	  # Check that block is later than the finalized epoch slot (optimization to reduce calls to get_ancestor)
//	  finalized_slot = compute_start_slot_at_epoch(store.finalized_checkpoint.epoch)
//	  assert block.slot > finalized_slot
//	  # Check block is a descendant of the finalized block at the checkpoint finalized slot
//	  assert get_ancestor(store, block.parent_root, finalized_slot) == store.finalized_checkpoint.root
//
//	  # Check the block is valid and compute the post-state
//	  state = state_transition(pre_state, signed_block, True)
//	  # Add new block to the store
//	  store.blocks[hash_tree_root(block)] = block
//	  # Add new state for this block to the store
//	  store.block_states[hash_tree_root(block)] = state
//
//	  # Update justified checkpoint
//	  if state.current_justified_checkpoint.epoch > store.justified_checkpoint.epoch:
//	    if state.current_justified_checkpoint.epoch > store.best_justified_checkpoint.epoch:
//	      store.best_justified_checkpoint = state.current_justified_checkpoint
//	    if should_update_justified_checkpoint(store, state.current_justified_checkpoint):
//	      store.justified_checkpoint = state.current_justified_checkpoint
//
//	  # Update finalized checkpoint
//	  if state.finalized_checkpoint.epoch > store.finalized_checkpoint.epoch:
//	    store.finalized_checkpoint = state.finalized_checkpoint
func (s *Service) OnBlock(ctx context.Context, tx *store.Transaction, signed interfaces.ReadOnlySignedBeaconBlock) (*BlockImportResult, error) {
	ctx, span := trace.StartSpan(ctx, "blockChain.onBlock")
	defer span.End()

	if err := interfaces.BeaconBlockIsNil(signed); err != nil {
		return nil, errors.Wrap(ErrNilBlock, err.Error())
	}
	b := signed.Block()
	root, err := b.HashTreeRoot()
	if err != nil {
		return nil, errors.Wrap(err, "could not hash block")
	}
	log.WithFields(logrus.Fields{
		"slot": b.Slot(),
		"root": rootString(root),
	}).Debug("Executing state transition on block")

	preState, err := s.getBlockPreState(tx, root, b.Slot(), b.ParentRoot())
	if err != nil {
		return nil, err
	}

	postState, err := s.cfg.StateTransitioner.ExecuteStateTransition(ctx, preState, signed, true)
	if err != nil {
		return nil, invalidBlock{error: errors.Wrap(ErrStateTransition, err.Error()), root: root}
	}

	tx.PutBlock(root, signed)
	tx.PutBlockState(root, postState)

	if err := s.updateCheckpoints(ctx, tx, postState); err != nil {
		return nil, errors.Wrap(err, "could not update checkpoints")
	}

	return &BlockImportResult{
		Root:      root,
		PreState:  preState,
		Block:     signed,
		PostState: postState,
	}, nil
}

// getBlockPreState returns the pre state of an incoming block after checking, in order,
// that the parent state is known, that the block is not from the future and that it
// descends from the finalized checkpoint.
func (s *Service) getBlockPreState(tx *store.Transaction, root [32]byte, slot primitives.Slot, parentRoot [32]byte) (state.ReadOnlyBeaconState, error) {
	preState, ok := tx.BlockState(parentRoot)
	if !ok {
		return nil, invalidBlock{error: errors.Wrapf(ErrUnknownParent, "parent root %#x", parentRoot), root: root}
	}

	// Verify block slot time is not from the future.
	if currentSlot := tx.CurrentSlot(); slot > currentSlot {
		return nil, invalidBlock{error: errors.Wrapf(ErrFromFuture, "block slot %d, current slot %d", slot, currentSlot), root: root}
	}

	if err := verifyBlkFinalizedAncestry(tx, root, slot, parentRoot); err != nil {
		return nil, err
	}
	return preState, nil
}

// verifyBlkFinalizedAncestry checks the block is later than the finalized epoch start and
// that the chain through its parent reaches the finalized root at that slot.
func verifyBlkFinalizedAncestry(view store.ReadOnlyStore, root [32]byte, slot primitives.Slot, parentRoot [32]byte) error {
	finalized := view.FinalizedCheckpoint()
	finalizedSlot, err := slots.EpochStart(finalized.Epoch)
	if err != nil {
		return err
	}
	if slot <= finalizedSlot {
		return invalidBlock{
			error: errors.Wrapf(ErrInvalidAncestry, "block slot %d is not later than finalized slot %d", slot, finalizedSlot),
			root:  root,
		}
	}
	ancestor, ok := forkchoice.AncestorAtOrBefore(view, parentRoot, finalizedSlot)
	if !ok || ancestor != finalized.Root {
		return invalidBlock{
			error: errors.Wrapf(ErrInvalidAncestry, "ancestor at finalized slot %d is %#x, want %#x", finalizedSlot, ancestor, finalized.Root),
			root:  root,
		}
	}
	return nil
}

// updateCheckpoints applies the post-state's justified and finalized checkpoints to the
// store. Every checkpoint only moves forward.
func (s *Service) updateCheckpoints(ctx context.Context, tx *store.Transaction, postState state.ReadOnlyBeaconState) error {
	newJustified := postState.CurrentJustifiedCheckpoint()
	if newJustified.Epoch > tx.JustifiedCheckpoint().Epoch {
		if newJustified.Epoch > tx.BestJustifiedCheckpoint().Epoch {
			s.cacheCheckpointState(ctx, tx, newJustified)
			tx.SetBestJustifiedCheckpoint(newJustified)
		}
		canUpdate, err := s.shouldUpdateCurrentJustified(tx, newJustified)
		if err != nil {
			return errors.Wrap(err, "could not check if justified checkpoint can be updated")
		}
		if canUpdate {
			s.cacheCheckpointState(ctx, tx, newJustified)
			tx.SetJustifiedCheckpoint(newJustified)
		} else {
			log.WithField("checkpoint", newJustified.String()).Debug("Deferring justified checkpoint update to next epoch")
		}
	}

	newFinalized := postState.FinalizedCheckpoint()
	if newFinalized.Epoch > tx.FinalizedCheckpoint().Epoch {
		s.cacheCheckpointState(ctx, tx, newFinalized)
		tx.SetFinalizedCheckpoint(newFinalized)
		if err := s.reconcileJustified(ctx, tx, newJustified); err != nil {
			return err
		}
	}

	if tx.JustifiedCheckpoint().Epoch > tx.BestJustifiedCheckpoint().Epoch {
		tx.SetBestJustifiedCheckpoint(tx.JustifiedCheckpoint())
	}
	return nil
}

// reconcileJustified runs after finalization advanced. The store's justified checkpoint
// follows the post-state's one when that is newer, or when the store's justified block no
// longer descends from the new finalized block.
//
// Spec pseudocode definition:
//
//	# Potentially update justified if different from store
//	if store.justified_checkpoint != state.current_justified_checkpoint:
//	  # Update justified if new justified is later than store justified
//	  if state.current_justified_checkpoint.epoch > store.justified_checkpoint.epoch:
//	    store.justified_checkpoint = state.current_justified_checkpoint
//	    return
//	  # Update justified if store justified is not in chain with finalized checkpoint
//	  finalized_slot = compute_start_slot_at_epoch(store.finalized_checkpoint.epoch)
//	  ancestor_at_finalized_slot = get_ancestor(store, store.justified_checkpoint.root, finalized_slot)
//	  if ancestor_at_finalized_slot != store.finalized_checkpoint.root:
//	    store.justified_checkpoint = state.current_justified_checkpoint
func (s *Service) reconcileJustified(ctx context.Context, tx *store.Transaction, stateJustified types.Checkpoint) error {
	justified := tx.JustifiedCheckpoint()
	if justified == stateJustified {
		return nil
	}
	if stateJustified.Epoch > justified.Epoch {
		s.cacheCheckpointState(ctx, tx, stateJustified)
		tx.SetJustifiedCheckpoint(stateJustified)
		return nil
	}
	if stateJustified.Epoch < justified.Epoch {
		// Switching would move the justified epoch backwards.
		return nil
	}
	finalized := tx.FinalizedCheckpoint()
	finalizedSlot, err := slots.EpochStart(finalized.Epoch)
	if err != nil {
		return err
	}
	if anc, ok := forkchoice.AncestorAtOrBefore(tx, justified.Root, finalizedSlot); !ok || anc != finalized.Root {
		s.cacheCheckpointState(ctx, tx, stateJustified)
		tx.SetJustifiedCheckpoint(stateJustified)
	}
	return nil
}

// shouldUpdateCurrentJustified prevents bouncing attack, by only update conflicting justified
// checkpoints in the fork choice if in the early slots of the epoch.
// Otherwise, delay incorporation of new justified checkpoint until next epoch boundary.
//
// Spec pseudocode definition:
//
//	def should_update_justified_checkpoint(store: Store, new_justified_checkpoint: Checkpoint) -> bool:
//	  """
//	  To address the bouncing attack, only update conflicting justified
//	  checkpoints in the fork choice if in the early slots of the epoch.
//	  Otherwise, delay incorporation of new justified checkpoint until next epoch boundary.
//	  See https://ethresear.ch/t/prevention-of-bouncing-attack-on-ffg/6114 for more detailed analysis and discussion.
//	  """
//	  if compute_slots_since_epoch_start(get_current_slot(store)) < SAFE_SLOTS_TO_UPDATE_JUSTIFIED:
//	    return True
//
//	  justified_slot = compute_start_slot_at_epoch(store.justified_checkpoint.epoch)
//	  new_justified_block = store.blocks[new_justified_checkpoint.root]
//	  if new_justified_block.slot <= justified_slot:
//	    return False
//	  if not get_ancestor(store, new_justified_checkpoint.root, justified_slot) == store.justified_checkpoint.root:
//	    return False
//
//	  return True
func (s *Service) shouldUpdateCurrentJustified(view store.ReadOnlyStore, newJustified types.Checkpoint) (bool, error) {
	if slots.SinceEpochStarts(view.CurrentSlot()) < params.BeaconConfig().SafeSlotsToUpdateJustified {
		return true, nil
	}
	justified := view.JustifiedCheckpoint()
	justifiedSlot, err := slots.EpochStart(justified.Epoch)
	if err != nil {
		return false, err
	}
	newJustifiedBlock, ok := view.Block(newJustified.Root)
	if !ok {
		return false, nil
	}
	if newJustifiedBlock.Block().Slot() <= justifiedSlot {
		return false, nil
	}
	ancestor, ok := forkchoice.AncestorAtOrBefore(view, newJustified.Root, justifiedSlot)
	if !ok || ancestor != justified.Root {
		return false, nil
	}
	return true, nil
}

// cacheCheckpointState stores the checkpoint state for cp in tx when its block state is
// known. A missing base state is not an error here: the state is computed on first use.
func (s *Service) cacheCheckpointState(ctx context.Context, tx *store.Transaction, cp types.Checkpoint) {
	if _, err := s.ensureCheckpointState(ctx, tx, cp); err != nil {
		log.WithError(err).WithField("checkpoint", cp.String()).Debug("Checkpoint state not cached")
	}
}
