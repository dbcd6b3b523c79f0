package blockchain

import (
	"testing"

	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/store"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/ghost/config/params"
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
	"github.com/prysmaticlabs/ghost/testing/assert"
	"github.com/prysmaticlabs/ghost/testing/require"
)

func TestOnTick(t *testing.T) {
	e := setupService(t)
	e.tickToSlot(3)
	b1 := e.importBlock(1, e.genesis, 0)
	best := types.Checkpoint{Epoch: 1, Root: b1}
	e.commit(func(tx *store.Transaction) {
		tx.SetBestJustifiedCheckpoint(best)
	})
	secondsPerSlot := params.BeaconConfig().SecondsPerSlot

	tx := e.store.StartTransaction()
	defer tx.Discard()

	e.service.OnTick(e.ctx, tx, 2*secondsPerSlot)
	assert.Equal(t, primitives.Slot(3), tx.CurrentSlot(), "earlier time ignored")

	e.service.OnTick(e.ctx, tx, 7*secondsPerSlot+secondsPerSlot-1)
	assert.Equal(t, primitives.Slot(7), tx.CurrentSlot())
	assert.Equal(t, e.genesis, tx.JustifiedCheckpoint().Root, "no promotion inside the epoch")

	e.service.OnTick(e.ctx, tx, 8*secondsPerSlot)
	assert.Equal(t, best, tx.JustifiedCheckpoint(), "promoted at the epoch start")
}

func TestOnTick_JumpOverEpochStartPromotes(t *testing.T) {
	e := setupService(t)
	e.tickToSlot(3)
	b1 := e.importBlock(1, e.genesis, 0)
	best := types.Checkpoint{Epoch: 1, Root: b1}
	e.commit(func(tx *store.Transaction) {
		tx.SetBestJustifiedCheckpoint(best)
	})

	e.tickToSlot(11)
	assert.Equal(t, best, e.service.JustifiedCheckpoint())
}

func TestReceiveTick_SameTimeDoesNotCommit(t *testing.T) {
	e := setupService(t)
	e.tickToSlot(4)
	seq := e.store.Snapshot().Seq()
	require.NoError(t, e.service.ReceiveTick(e.ctx, 4*params.BeaconConfig().SecondsPerSlot))
	assert.Equal(t, seq, e.store.Snapshot().Seq())
	require.NoError(t, e.service.ReceiveTick(e.ctx, 1))
	assert.Equal(t, seq, e.store.Snapshot().Seq())
}
