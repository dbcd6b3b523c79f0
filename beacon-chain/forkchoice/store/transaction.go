package store

import (
	"context"

	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/ghost/beacon-chain/state"
	"github.com/prysmaticlabs/ghost/consensus-types/interfaces"
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
	"github.com/prysmaticlabs/ghost/time/slots"
	"github.com/sirupsen/logrus"
)

// Transaction buffers writes over the snapshot it was started from. Reads see the
// transaction's own writes; nothing is visible to other readers until Commit.
// A Transaction holds the store's write lock and is not safe for concurrent use.
type Transaction struct {
	store *Store
	base  *Snapshot
	done  bool
	dirty bool

	time          uint64
	justified     types.Checkpoint
	bestJustified types.Checkpoint
	finalized     types.Checkpoint

	blocks           map[[32]byte]interfaces.ReadOnlySignedBeaconBlock
	blockStates      map[[32]byte]state.ReadOnlyBeaconState
	checkpointStates map[types.Checkpoint]state.ReadOnlyBeaconState
	latestMessages   map[primitives.ValidatorIndex]types.LatestMessage
	children         map[[32]byte][][32]byte
}

func newTransaction(s *Store, base *Snapshot) *Transaction {
	return &Transaction{
		store:            s,
		base:             base,
		time:             base.time,
		justified:        base.justified,
		bestJustified:    base.bestJustified,
		finalized:        base.finalized,
		blocks:           map[[32]byte]interfaces.ReadOnlySignedBeaconBlock{},
		blockStates:      map[[32]byte]state.ReadOnlyBeaconState{},
		checkpointStates: map[types.Checkpoint]state.ReadOnlyBeaconState{},
		latestMessages:   map[primitives.ValidatorIndex]types.LatestMessage{},
		children:         map[[32]byte][][32]byte{},
	}
}

// Time of the transaction view.
func (tx *Transaction) Time() uint64 {
	return tx.time
}

// GenesisTime of the chain.
func (tx *Transaction) GenesisTime() uint64 {
	return tx.base.genesisTime
}

// CurrentSlot derived from the transaction's time.
func (tx *Transaction) CurrentSlot() primitives.Slot {
	return slots.AtTime(tx.base.genesisTime, tx.time)
}

// JustifiedCheckpoint of the transaction view.
func (tx *Transaction) JustifiedCheckpoint() types.Checkpoint {
	return tx.justified
}

// BestJustifiedCheckpoint of the transaction view.
func (tx *Transaction) BestJustifiedCheckpoint() types.Checkpoint {
	return tx.bestJustified
}

// FinalizedCheckpoint of the transaction view.
func (tx *Transaction) FinalizedCheckpoint() types.Checkpoint {
	return tx.finalized
}

// Block by root.
func (tx *Transaction) Block(root [32]byte) (interfaces.ReadOnlySignedBeaconBlock, bool) {
	if b, ok := tx.blocks[root]; ok {
		return b, true
	}
	return tx.base.Block(root)
}

// HasBlock reports whether the block is known.
func (tx *Transaction) HasBlock(root [32]byte) bool {
	_, ok := tx.Block(root)
	return ok
}

// BlockState returns the post-state of the block with root.
func (tx *Transaction) BlockState(root [32]byte) (state.ReadOnlyBeaconState, bool) {
	if st, ok := tx.blockStates[root]; ok {
		return st, true
	}
	return tx.base.BlockState(root)
}

// CheckpointState returns the state advanced to the checkpoint's epoch start.
func (tx *Transaction) CheckpointState(cp types.Checkpoint) (state.ReadOnlyBeaconState, bool) {
	if st, ok := tx.checkpointStates[cp]; ok {
		return st, true
	}
	return tx.base.CheckpointState(cp)
}

// LatestMessage of the validator.
func (tx *Transaction) LatestMessage(idx primitives.ValidatorIndex) (types.LatestMessage, bool) {
	if m, ok := tx.latestMessages[idx]; ok {
		return m, true
	}
	return tx.base.LatestMessage(idx)
}

// RangeLatestMessages calls f for every validator vote until f returns false.
func (tx *Transaction) RangeLatestMessages(f func(idx primitives.ValidatorIndex, msg types.LatestMessage) bool) {
	for idx, msg := range tx.latestMessages {
		if !f(idx, msg) {
			return
		}
	}
	tx.base.RangeLatestMessages(func(idx primitives.ValidatorIndex, msg types.LatestMessage) bool {
		if _, ok := tx.latestMessages[idx]; ok {
			return true
		}
		return f(idx, msg)
	})
}

// Children returns the roots of the known blocks whose parent is root.
func (tx *Transaction) Children(root [32]byte) [][32]byte {
	if c, ok := tx.children[root]; ok {
		return c
	}
	return tx.base.Children(root)
}

// PutBlock records a block and indexes it under its parent. Blocks are append-only:
// a root that is already known is left as it is.
func (tx *Transaction) PutBlock(root [32]byte, b interfaces.ReadOnlySignedBeaconBlock) {
	if tx.HasBlock(root) {
		return
	}
	tx.blocks[root] = b
	parent := b.Block().ParentRoot()
	existing := tx.Children(parent)
	siblings := make([][32]byte, len(existing), len(existing)+1)
	copy(siblings, existing)
	tx.children[parent] = append(siblings, root)
	tx.dirty = true
}

// PutBlockState records the post-state of a block. Existing states are never replaced.
func (tx *Transaction) PutBlockState(root [32]byte, st state.ReadOnlyBeaconState) {
	if _, ok := tx.BlockState(root); ok {
		return
	}
	tx.blockStates[root] = st
	tx.dirty = true
}

// PutCheckpointState records a checkpoint state unless one is already present, and
// returns the state that is now stored for the checkpoint. The first value wins.
func (tx *Transaction) PutCheckpointState(cp types.Checkpoint, st state.ReadOnlyBeaconState) state.ReadOnlyBeaconState {
	if existing, ok := tx.CheckpointState(cp); ok {
		return existing
	}
	tx.checkpointStates[cp] = st
	tx.dirty = true
	return st
}

// SetLatestMessage overwrites the vote of a validator.
func (tx *Transaction) SetLatestMessage(idx primitives.ValidatorIndex, msg types.LatestMessage) {
	tx.latestMessages[idx] = msg
	tx.dirty = true
}

// SetTime sets the store time.
func (tx *Transaction) SetTime(t uint64) {
	if t == tx.time {
		return
	}
	tx.time = t
	tx.dirty = true
}

// SetJustifiedCheckpoint sets the justified checkpoint.
func (tx *Transaction) SetJustifiedCheckpoint(cp types.Checkpoint) {
	if cp == tx.justified {
		return
	}
	tx.justified = cp
	tx.dirty = true
}

// SetBestJustifiedCheckpoint sets the best justified checkpoint.
func (tx *Transaction) SetBestJustifiedCheckpoint(cp types.Checkpoint) {
	if cp == tx.bestJustified {
		return
	}
	tx.bestJustified = cp
	tx.dirty = true
}

// SetFinalizedCheckpoint sets the finalized checkpoint.
func (tx *Transaction) SetFinalizedCheckpoint(cp types.Checkpoint) {
	if cp == tx.finalized {
		return
	}
	tx.finalized = cp
	tx.dirty = true
}

// Commit publishes the buffered writes as a single new snapshot and releases the write
// lock. Finalized checkpoint listeners run after the new snapshot is visible, and the
// changes are handed to the persister without waiting for them to be written.
func (tx *Transaction) Commit(ctx context.Context) error {
	if tx.done {
		return ErrTransactionDone
	}
	tx.done = true
	defer tx.store.writeLock.Unlock()
	if !tx.dirty {
		return nil
	}

	base := tx.base
	next := &Snapshot{
		seq:              base.seq + 1,
		time:             tx.time,
		genesisTime:      base.genesisTime,
		justified:        tx.justified,
		bestJustified:    tx.bestJustified,
		finalized:        tx.finalized,
		blocks:           base.blocks.With(tx.blocks),
		blockStates:      base.blockStates.With(tx.blockStates),
		checkpointStates: base.checkpointStates.With(tx.checkpointStates),
		latestMessages:   base.latestMessages.With(tx.latestMessages),
		children:         base.children.With(tx.children),
	}
	tx.store.current.Store(next)
	commitsTotal.Inc()
	log.WithFields(logrus.Fields{
		"seq":       next.seq,
		"blocks":    len(tx.blocks),
		"votes":     len(tx.latestMessages),
		"justified": next.justified.String(),
		"finalized": next.finalized.String(),
	}).Trace("Committed store transaction")

	if next.finalized != base.finalized {
		for _, l := range tx.store.listeners {
			l.FinalizedCheckpointChanged(ctx, base.finalized, next.finalized)
		}
	}
	if tx.store.persist != nil {
		tx.store.persist.enqueue(tx.delta(next.seq))
	}
	return nil
}

// Discard drops the buffered writes and releases the write lock. It is a no-op after
// Commit, so it is safe to defer right after StartTransaction.
func (tx *Transaction) Discard() {
	if tx.done {
		return
	}
	tx.done = true
	tx.store.writeLock.Unlock()
}

func (tx *Transaction) delta(seq uint64) *CommitDelta {
	return &CommitDelta{
		Seq:              seq,
		Time:             tx.time,
		GenesisTime:      tx.base.genesisTime,
		Justified:        tx.justified,
		BestJustified:    tx.bestJustified,
		Finalized:        tx.finalized,
		Blocks:           tx.blocks,
		BlockStates:      tx.blockStates,
		CheckpointStates: tx.checkpointStates,
		LatestMessages:   tx.latestMessages,
	}
}
