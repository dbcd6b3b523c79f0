package blockchain

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/store"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/ghost/beacon-chain/state"
	"github.com/prysmaticlabs/ghost/time/slots"
	"go.opencensus.io/trace"
	"golang.org/x/sync/singleflight"
)

// checkpointState returns the state of the checkpoint block advanced to the first slot
// of the checkpoint epoch, reading it from the view when present. Computation is a pure
// function of the checkpoint, so concurrent callers share a single run.
func (s *Service) checkpointState(ctx context.Context, view store.ReadOnlyStore, cp types.Checkpoint) (state.ReadOnlyBeaconState, error) {
	if st, ok := view.CheckpointState(cp); ok {
		checkpointStateHit.Inc()
		return st, nil
	}
	base, ok := view.BlockState(cp.Root)
	if !ok {
		return nil, errors.Wrapf(errCheckpointBaseUnknown, "checkpoint %s", cp)
	}
	checkpointStateMiss.Inc()
	key := fmt.Sprintf("%d-%#x", cp.Epoch, cp.Root)
	// The shared run outlives any single caller, so it runs under the service context.
	runCtx := trace.NewContext(s.ctx, trace.FromContext(ctx))
	ch := s.checkpointStateGroup.DoChan(key, func() (interface{}, error) {
		return s.computeCheckpointState(runCtx, base, cp)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}
	st, ok := res.Val.(state.ReadOnlyBeaconState)
	if !ok {
		return nil, errors.Errorf("unexpected checkpoint state type %T", res.Val)
	}
	return st, nil
}

// computeCheckpointState advances base through empty slots to the checkpoint epoch start.
//
// Spec pseudocode definition:
//
//	base_state = copy(store.block_states[target.root])
//	if base_state.slot < compute_start_slot_at_epoch(target.epoch):
//	  process_slots(base_state, compute_start_slot_at_epoch(target.epoch))
//	store.checkpoint_states[target] = base_state
func (s *Service) computeCheckpointState(ctx context.Context, base state.ReadOnlyBeaconState, cp types.Checkpoint) (state.ReadOnlyBeaconState, error) {
	ctx, span := trace.StartSpan(ctx, "blockChain.computeCheckpointState")
	defer span.End()
	epochStart, err := slots.EpochStart(cp.Epoch)
	if err != nil {
		return nil, err
	}
	if base.Slot() >= epochStart {
		return base, nil
	}
	st, err := s.cfg.StateTransitioner.ProcessSlots(ctx, base, epochStart)
	if err != nil {
		return nil, errors.Wrapf(err, "could not process slots up to %d", epochStart)
	}
	return st, nil
}

// ensureCheckpointState makes sure the transaction holds a state for cp and returns the
// one that is stored.
func (s *Service) ensureCheckpointState(ctx context.Context, tx *store.Transaction, cp types.Checkpoint) (state.ReadOnlyBeaconState, error) {
	st, err := s.checkpointState(ctx, tx, cp)
	if err != nil {
		return nil, err
	}
	return tx.PutCheckpointState(cp, st), nil
}

// CheckpointState returns the checkpoint state for cp from the committed snapshot,
// computing it without storing it when the store does not hold one yet.
func (s *Service) CheckpointState(ctx context.Context, cp types.Checkpoint) (state.ReadOnlyBeaconState, error) {
	return s.checkpointState(ctx, s.cfg.Store.Snapshot(), cp)
}
