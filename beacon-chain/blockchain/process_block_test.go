package blockchain

import (
	"context"
	"testing"

	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/store"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/ghost/testing/assert"
	"github.com/prysmaticlabs/ghost/testing/require"
	"github.com/prysmaticlabs/ghost/testing/util"
	"github.com/sirupsen/logrus"
	logTest "github.com/sirupsen/logrus/hooks/test"
)

func TestReceiveBlock_ImportsChild(t *testing.T) {
	hook := logTest.NewGlobal()
	e := setupService(t)
	e.tickToSlot(1)

	b := e.block(1, e.genesis, 0)
	res, err := e.service.ReceiveBlock(e.ctx, b)
	require.NoError(t, err)
	assert.Equal(t, b.Root(), res.Root)
	assert.Equal(t, int64(1), e.trans.Transitions())
	assert.Equal(t, "Imported block", hook.LastEntry().Message)
	assert.LogsDoNotContain(t, hook, "Rejected block")

	snap := e.store.Snapshot()
	assert.True(t, snap.HasBlock(res.Root))
	st, ok := snap.BlockState(res.Root)
	require.True(t, ok)
	assert.Same(t, res.PostState, st)
	assert.Equal(t, [][32]byte{res.Root}, snap.Children(e.genesis))

	head, err := e.service.HeadRoot(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, res.Root, head)
}

func TestReceiveBlock_NilBlock(t *testing.T) {
	e := setupService(t)
	_, err := e.service.ReceiveBlock(e.ctx, nil)
	require.ErrorIs(t, err, ErrNilBlock)

	_, err = e.service.ReceiveBlock(e.ctx, &util.SignedBeaconBlock{})
	require.ErrorIs(t, err, ErrNilBlock)
}

func TestReceiveBlock_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		setup func(e *testEnv) *util.SignedBeaconBlock
		want  error
	}{
		{
			name: "unknown parent",
			setup: func(e *testEnv) *util.SignedBeaconBlock {
				e.tickToSlot(2)
				return e.block(2, [32]byte{'x'}, 0)
			},
			want: ErrUnknownParent,
		},
		{
			name: "from the future",
			setup: func(e *testEnv) *util.SignedBeaconBlock {
				e.tickToSlot(1)
				return e.block(2, e.genesis, 0)
			},
			want: ErrFromFuture,
		},
		{
			name: "state transition failure",
			setup: func(e *testEnv) *util.SignedBeaconBlock {
				e.tickToSlot(1)
				b := e.block(1, e.genesis, 0)
				b.Blk.BlockBody.Invalid = true
				return b
			},
			want: ErrStateTransition,
		},
		{
			name: "state root mismatch",
			setup: func(e *testEnv) *util.SignedBeaconBlock {
				e.tickToSlot(1)
				b := e.block(1, e.genesis, 0)
				b.Blk.State = [32]byte{'b', 'a', 'd'}
				return b
			},
			want: ErrStateTransition,
		},
		{
			name: "not later than finalized slot",
			setup: func(e *testEnv) *util.SignedBeaconBlock {
				e.tickToSlot(9)
				a := e.importBlock(1, e.genesis, 1)
				e.commit(func(tx *store.Transaction) {
					tx.SetJustifiedCheckpoint(types.Checkpoint{Epoch: 1, Root: a})
					tx.SetFinalizedCheckpoint(types.Checkpoint{Epoch: 1, Root: a})
				})
				return e.block(8, a, 0)
			},
			want: ErrInvalidAncestry,
		},
		{
			name: "finalized block not an ancestor",
			setup: func(e *testEnv) *util.SignedBeaconBlock {
				e.tickToSlot(9)
				a := e.importBlock(1, e.genesis, 1)
				b := e.importBlock(1, e.genesis, 2)
				e.commit(func(tx *store.Transaction) {
					tx.SetJustifiedCheckpoint(types.Checkpoint{Epoch: 1, Root: a})
					tx.SetFinalizedCheckpoint(types.Checkpoint{Epoch: 1, Root: a})
				})
				return e.block(9, b, 0)
			},
			want: ErrInvalidAncestry,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := setupService(t)
			blk := tt.setup(e)
			before := e.store.Snapshot()

			_, err := e.service.ReceiveBlock(e.ctx, blk)
			require.ErrorIs(t, err, tt.want)
			assert.True(t, IsInvalidBlock(err))
			assert.Equal(t, blk.Root(), InvalidBlockRoot(err))

			after := e.store.Snapshot()
			assert.Same(t, before, after, "rejected block must not commit")
			assert.False(t, after.HasBlock(blk.Root()))
		})
	}
}

func TestReceiveBlock_FinalizedAncestryThroughSkipSlots(t *testing.T) {
	e := setupService(t)
	e.tickToSlot(20)
	a := e.importBlock(6, e.genesis, 0)
	e.commit(func(tx *store.Transaction) {
		tx.SetJustifiedCheckpoint(types.Checkpoint{Epoch: 1, Root: a})
		tx.SetFinalizedCheckpoint(types.Checkpoint{Epoch: 1, Root: a})
	})
	// Slot 8 is empty, the chain at the finalized slot is a.
	_, err := e.service.ReceiveBlock(e.ctx, e.block(12, a, 0))
	require.NoError(t, err)
}

func TestReceiveBlock_JustifiedInSafeWindow(t *testing.T) {
	e := setupService(t)
	e.tickToSlot(17)
	b1 := e.importBlock(1, e.genesis, 1)
	b2 := e.importBlock(2, e.genesis, 2)
	b10 := e.importBlock(10, b2, 0)
	e.commit(func(tx *store.Transaction) {
		cp := types.Checkpoint{Epoch: 1, Root: b1}
		tx.SetJustifiedCheckpoint(cp)
		tx.SetBestJustifiedCheckpoint(cp)
	})

	newJustified := types.Checkpoint{Epoch: 2, Root: b10}
	d := e.block(17, b10, 0)
	d.Blk.BlockBody.Justified = newJustified
	_, err := e.service.ReceiveBlock(e.ctx, d)
	require.NoError(t, err)

	assert.Equal(t, newJustified, e.service.JustifiedCheckpoint())
	assert.Equal(t, newJustified, e.service.BestJustifiedCheckpoint())
	_, ok := e.store.Snapshot().CheckpointState(newJustified)
	assert.True(t, ok, "justified checkpoint state cached on update")
}

func TestReceiveBlock_ConflictingJustifiedDeferredToEpochBoundary(t *testing.T) {
	hook := logTest.NewGlobal()
	logrus.SetLevel(logrus.DebugLevel)
	t.Cleanup(func() { logrus.SetLevel(logrus.InfoLevel) })

	e := setupService(t)
	e.tickToSlot(20)
	b1 := e.importBlock(1, e.genesis, 1)
	b2 := e.importBlock(2, e.genesis, 2)
	b10 := e.importBlock(10, b2, 0)
	old := types.Checkpoint{Epoch: 1, Root: b1}
	e.commit(func(tx *store.Transaction) {
		tx.SetJustifiedCheckpoint(old)
		tx.SetBestJustifiedCheckpoint(old)
	})

	newJustified := types.Checkpoint{Epoch: 2, Root: b10}
	d := e.block(20, b10, 0)
	d.Blk.BlockBody.Justified = newJustified
	_, err := e.service.ReceiveBlock(e.ctx, d)
	require.NoError(t, err)

	assert.Equal(t, old, e.service.JustifiedCheckpoint(), "conflicting update outside the safe window is deferred")
	assert.Equal(t, newJustified, e.service.BestJustifiedCheckpoint())
	require.LogsContain(t, hook, "Deferring justified checkpoint update to next epoch")

	e.tickToSlot(23)
	assert.Equal(t, old, e.service.JustifiedCheckpoint(), "no promotion inside the epoch")
	e.tickToSlot(24)
	assert.Equal(t, newJustified, e.service.JustifiedCheckpoint(), "promoted when the next epoch starts")
}

func TestReceiveBlock_DescendantJustifiedOutsideSafeWindow(t *testing.T) {
	e := setupService(t)
	e.tickToSlot(20)
	b10 := e.importBlock(10, e.genesis, 0)

	newJustified := types.Checkpoint{Epoch: 1, Root: b10}
	d := e.block(20, b10, 0)
	d.Blk.BlockBody.Justified = newJustified
	_, err := e.service.ReceiveBlock(e.ctx, d)
	require.NoError(t, err)
	assert.Equal(t, newJustified, e.service.JustifiedCheckpoint(), "descendant of the store justified block updates at once")
}

func TestReceiveBlock_FinalizationReconcilesJustified(t *testing.T) {
	var listener recordingListener
	e := setupService(t, store.WithFinalizedCheckpointListener(&listener))
	e.tickToSlot(20)
	b1 := e.importBlock(1, e.genesis, 1)
	b2 := e.importBlock(2, e.genesis, 2)
	b10 := e.importBlock(10, b2, 0)
	old := types.Checkpoint{Epoch: 1, Root: b1}
	e.commit(func(tx *store.Transaction) {
		tx.SetJustifiedCheckpoint(old)
		tx.SetBestJustifiedCheckpoint(old)
	})

	newJustified := types.Checkpoint{Epoch: 2, Root: b10}
	newFinalized := types.Checkpoint{Epoch: 1, Root: b2}
	d := e.block(20, b10, 0)
	d.Blk.BlockBody.Justified = newJustified
	d.Blk.BlockBody.Finalized = newFinalized
	_, err := e.service.ReceiveBlock(e.ctx, d)
	require.NoError(t, err)

	assert.Equal(t, newFinalized, e.service.FinalizedCheckpoint())
	assert.Equal(t, newJustified, e.service.JustifiedCheckpoint(), "finalization adopts the newer post-state justified")
	assert.Equal(t, newJustified, e.service.BestJustifiedCheckpoint())
	_, ok := e.store.Snapshot().CheckpointState(newFinalized)
	assert.True(t, ok, "finalized checkpoint state cached")
	require.Len(t, listener.changes, 1)
	assert.Equal(t, newFinalized, listener.changes[0])
}

func TestReconcileJustified(t *testing.T) {
	e := setupService(t)
	e.tickToSlot(30)
	a1 := e.importBlock(1, e.genesis, 1)
	a17 := e.importBlock(17, a1, 0)
	b2 := e.importBlock(2, e.genesis, 2)
	b18 := e.importBlock(18, b2, 0)

	tests := []struct {
		name      string
		justified types.Checkpoint
		state     types.Checkpoint
		want      types.Checkpoint
	}{
		{
			name:      "same checkpoint",
			justified: types.Checkpoint{Epoch: 2, Root: b18},
			state:     types.Checkpoint{Epoch: 2, Root: b18},
			want:      types.Checkpoint{Epoch: 2, Root: b18},
		},
		{
			name:      "older post-state justified never lowers the epoch",
			justified: types.Checkpoint{Epoch: 3, Root: a17},
			state:     types.Checkpoint{Epoch: 2, Root: b18},
			want:      types.Checkpoint{Epoch: 3, Root: a17},
		},
		{
			name:      "equal epoch, store justified off the finalized chain",
			justified: types.Checkpoint{Epoch: 2, Root: a17},
			state:     types.Checkpoint{Epoch: 2, Root: b18},
			want:      types.Checkpoint{Epoch: 2, Root: b18},
		},
		{
			name:      "equal epoch, store justified on the finalized chain",
			justified: types.Checkpoint{Epoch: 2, Root: b18},
			state:     types.Checkpoint{Epoch: 2, Root: b2},
			want:      types.Checkpoint{Epoch: 2, Root: b18},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := e.store.StartTransaction()
			defer tx.Discard()
			tx.SetJustifiedCheckpoint(tt.justified)
			tx.SetFinalizedCheckpoint(types.Checkpoint{Epoch: 1, Root: b2})
			require.NoError(t, e.service.reconcileJustified(e.ctx, tx, tt.state))
			assert.Equal(t, tt.want, tx.JustifiedCheckpoint())
		})
	}
}

func TestReceiveBlock_CheckpointsNeverRegress(t *testing.T) {
	e := setupService(t)
	e.tickToSlot(40)
	b1 := e.importBlock(1, e.genesis, 0)
	b8 := e.importBlock(8, b1, 0)
	b17 := e.importBlock(17, b8, 0)

	high := e.block(33, b17, 0)
	high.Blk.BlockBody.Justified = types.Checkpoint{Epoch: 2, Root: b17}
	high.Blk.BlockBody.Finalized = types.Checkpoint{Epoch: 1, Root: b8}
	_, err := e.service.ReceiveBlock(e.ctx, high)
	require.NoError(t, err)
	justified := e.service.JustifiedCheckpoint()
	finalized := e.service.FinalizedCheckpoint()
	best := e.service.BestJustifiedCheckpoint()

	low := e.block(34, b17, 0)
	low.Blk.BlockBody.Justified = types.Checkpoint{Epoch: 1, Root: b8}
	_, err = e.service.ReceiveBlock(e.ctx, low)
	require.NoError(t, err)

	assert.Equal(t, justified, e.service.JustifiedCheckpoint())
	assert.Equal(t, finalized, e.service.FinalizedCheckpoint())
	assert.Equal(t, best, e.service.BestJustifiedCheckpoint())
	assert.LessOrEqual(t, e.service.FinalizedCheckpoint().Epoch, e.service.JustifiedCheckpoint().Epoch)
	assert.LessOrEqual(t, e.service.JustifiedCheckpoint().Epoch, e.service.BestJustifiedCheckpoint().Epoch)
}

func TestReceiveBlock_RejectedLogsReason(t *testing.T) {
	hook := logTest.NewGlobal()
	logrus.SetLevel(logrus.DebugLevel)
	t.Cleanup(func() { logrus.SetLevel(logrus.InfoLevel) })

	e := setupService(t)
	_, err := e.service.ReceiveBlock(e.ctx, e.block(5, e.genesis, 0))
	require.ErrorIs(t, err, ErrFromFuture)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "Rejected block", entry.Message)
	assert.Equal(t, "from_future", entry.Data["reason"])
}

type recordingListener struct {
	changes []types.Checkpoint
}

func (l *recordingListener) FinalizedCheckpointChanged(_ context.Context, _, current types.Checkpoint) {
	l.changes = append(l.changes, current)
}
