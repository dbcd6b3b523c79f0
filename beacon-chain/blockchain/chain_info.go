package blockchain

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/ghost/beacon-chain/core/helpers"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/store"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/ghost/config/params"
	"github.com/prysmaticlabs/ghost/consensus-types/interfaces"
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
	"github.com/prysmaticlabs/ghost/time/slots"
)

// ChainInfoFetcher defines a common interface for methods in blockchain service which
// directly retrieve chain info related data.
type ChainInfoFetcher interface {
	HeadRoot(ctx context.Context) ([32]byte, error)
	HeadBlock(ctx context.Context) (interfaces.ReadOnlySignedBeaconBlock, error)
	JustifiedCheckpoint() types.Checkpoint
	BestJustifiedCheckpoint() types.Checkpoint
	FinalizedCheckpoint() types.Checkpoint
	Ancestor(root [32]byte, slot primitives.Slot) ([32]byte, bool)
	CurrentSlot() primitives.Slot
	IsFinalizedCheckpointCompatible(cp types.Checkpoint) bool
}

var _ = ChainInfoFetcher(&Service{})

// HeadRoot returns the fork choice head of the last committed snapshot. Results are
// cached per snapshot.
func (s *Service) HeadRoot(ctx context.Context) ([32]byte, error) {
	snap := s.cfg.Store.Snapshot()
	if root, ok := s.headCache.Get(snap.Seq()); ok {
		return root, nil
	}
	balances, err := s.justifiedBalances(ctx, snap)
	if err != nil {
		return [32]byte{}, err
	}
	head, err := forkchoice.Head(ctx, snap, balances)
	if err != nil {
		return [32]byte{}, errors.Wrap(err, "could not compute head")
	}
	s.headCache.Add(snap.Seq(), head)
	if b, ok := snap.Block(head); ok {
		beaconHeadSlot.Set(float64(b.Block().Slot()))
	}
	return head, nil
}

// HeadBlock returns the head block of the last committed snapshot.
func (s *Service) HeadBlock(ctx context.Context) (interfaces.ReadOnlySignedBeaconBlock, error) {
	root, err := s.HeadRoot(ctx)
	if err != nil {
		return nil, err
	}
	b, ok := s.cfg.Store.Snapshot().Block(root)
	if !ok {
		return nil, errors.Errorf("head block %#x not in store", root)
	}
	return b, nil
}

// Nodes returns the fork choice tree of the last committed snapshot.
func (s *Service) Nodes(ctx context.Context) ([]*forkchoice.Node, error) {
	snap := s.cfg.Store.Snapshot()
	balances, err := s.justifiedBalances(ctx, snap)
	if err != nil {
		return nil, err
	}
	return forkchoice.Nodes(ctx, snap, balances)
}

func (s *Service) justifiedBalances(ctx context.Context, view store.ReadOnlyStore) ([]uint64, error) {
	st, err := s.checkpointState(ctx, view, view.JustifiedCheckpoint())
	if err != nil {
		return nil, errors.Wrap(err, "could not get justified checkpoint state")
	}
	return helpers.EffectiveBalances(st)
}

// JustifiedCheckpoint of the last committed snapshot.
func (s *Service) JustifiedCheckpoint() types.Checkpoint {
	return s.cfg.Store.Snapshot().JustifiedCheckpoint()
}

// BestJustifiedCheckpoint of the last committed snapshot.
func (s *Service) BestJustifiedCheckpoint() types.Checkpoint {
	return s.cfg.Store.Snapshot().BestJustifiedCheckpoint()
}

// FinalizedCheckpoint of the last committed snapshot.
func (s *Service) FinalizedCheckpoint() types.Checkpoint {
	return s.cfg.Store.Snapshot().FinalizedCheckpoint()
}

// Ancestor returns the block root at slot on the chain of root. See forkchoice.Ancestor.
func (s *Service) Ancestor(root [32]byte, slot primitives.Slot) ([32]byte, bool) {
	return forkchoice.Ancestor(s.cfg.Store.Snapshot(), root, slot)
}

// CurrentSlot of the store clock.
func (s *Service) CurrentSlot() primitives.Slot {
	return s.cfg.Store.Snapshot().CurrentSlot()
}

// IsFinalizedCheckpointCompatible reports whether a peer's finalized checkpoint can be on
// the same chain as ours. Checkpoints at the genesis epoch and checkpoints ahead of our
// finalized epoch cannot be refuted locally and are accepted.
func (s *Service) IsFinalizedCheckpointCompatible(cp types.Checkpoint) bool {
	snap := s.cfg.Store.Snapshot()
	finalized := snap.FinalizedCheckpoint()
	switch {
	case cp.Epoch == params.BeaconConfig().GenesisEpoch:
		return true
	case cp.Epoch > finalized.Epoch:
		return true
	case cp.Epoch == finalized.Epoch:
		return cp.Root == finalized.Root
	}
	slot, err := slots.EpochStart(cp.Epoch)
	if err != nil {
		return false
	}
	anc, ok := forkchoice.AncestorAtOrBefore(snap, finalized.Root, slot)
	return ok && anc == cp.Root
}
