package blockchain

import (
	"bytes"
	"testing"

	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/store"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
	"github.com/prysmaticlabs/ghost/testing/assert"
	"github.com/prysmaticlabs/ghost/testing/require"
)

func TestHeadRoot_GenesisOnly(t *testing.T) {
	e := setupService(t)
	head, err := e.service.HeadRoot(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, e.genesis, head)

	blk, err := e.service.HeadBlock(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, primitives.Slot(0), blk.Block().Slot())
}

func TestHeadRoot_FollowsAttestingBalance(t *testing.T) {
	e := setupService(t)
	e.tickToSlot(2)
	a := e.importBlock(1, e.genesis, 1)
	b := e.importBlock(1, e.genesis, 2)
	genesisTarget := types.Checkpoint{Epoch: 0, Root: e.genesis}

	require.NoError(t, e.service.ReceiveAttestation(e.ctx, newAttestation(1, a, genesisTarget, 0, 1, 2, 3, 4, 5)))
	require.NoError(t, e.service.ReceiveAttestation(e.ctx, newAttestation(1, b, genesisTarget, 6, 7, 8, 9)))
	head, err := e.service.HeadRoot(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, a, head, "60/40 split picks the heavier branch")

	// Three validators move to b in a newer epoch.
	e.tickToSlot(10)
	require.NoError(t, e.service.ReceiveAttestation(e.ctx, newAttestation(9, b, types.Checkpoint{Epoch: 1, Root: b}, 0, 1, 2)))
	head, err = e.service.HeadRoot(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, b, head)

	nodes, err := e.service.Nodes(e.ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	weights := map[[32]byte]uint64{}
	for _, n := range nodes {
		weights[n.Root] = n.Weight
	}
	assert.Greater(t, weights[b], weights[a])
	assert.Equal(t, weights[a]+weights[b], weights[e.genesis])
}

func TestHeadRoot_TieBreaksOnGreaterRoot(t *testing.T) {
	e := setupService(t)
	e.tickToSlot(2)
	a := e.importBlock(1, e.genesis, 1)
	b := e.importBlock(1, e.genesis, 2)
	target := types.Checkpoint{Epoch: 0, Root: e.genesis}
	require.NoError(t, e.service.ReceiveAttestation(e.ctx, newAttestation(1, a, target, 0)))
	require.NoError(t, e.service.ReceiveAttestation(e.ctx, newAttestation(1, b, target, 1)))

	want := a
	if bytes.Compare(b[:], a[:]) > 0 {
		want = b
	}
	head, err := e.service.HeadRoot(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, want, head)
}

func TestHeadRoot_CachedPerSnapshot(t *testing.T) {
	e := setupService(t)
	e.tickToSlot(1)
	seq := e.store.Snapshot().Seq()
	head, err := e.service.HeadRoot(e.ctx)
	require.NoError(t, err)
	cached, ok := e.service.headCache.Get(seq)
	require.True(t, ok)
	assert.Equal(t, head, cached)

	child := e.importBlock(1, e.genesis, 0)
	assert.NotEqual(t, seq, e.store.Snapshot().Seq())
	head, err = e.service.HeadRoot(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, child, head, "new snapshot recomputes the head")
}

func TestCheckpointAccessors(t *testing.T) {
	e := setupService(t)
	genesisCP := types.Checkpoint{Epoch: 0, Root: e.genesis}
	assert.Equal(t, genesisCP, e.service.JustifiedCheckpoint())
	assert.Equal(t, genesisCP, e.service.BestJustifiedCheckpoint())
	assert.Equal(t, genesisCP, e.service.FinalizedCheckpoint())
	assert.Equal(t, primitives.Slot(0), e.service.CurrentSlot())
	e.tickToSlot(7)
	assert.Equal(t, primitives.Slot(7), e.service.CurrentSlot())
}

func TestService_Ancestor(t *testing.T) {
	e := setupService(t)
	e.tickToSlot(20)
	b1 := e.importBlock(1, e.genesis, 0)
	b8 := e.importBlock(8, b1, 0)
	b16 := e.importBlock(16, b8, 0)

	got, ok := e.service.Ancestor(b16, 8)
	require.True(t, ok)
	assert.Equal(t, b8, got)
	got, ok = e.service.Ancestor(b16, 5)
	require.True(t, ok)
	assert.Equal(t, b1, got, "skip slot resolves to the previous block")
	_, ok = e.service.Ancestor(b8, 16)
	assert.False(t, ok, "never goes forward")
	_, ok = e.service.Ancestor([32]byte{'?'}, 0)
	assert.False(t, ok)
}

func TestIsFinalizedCheckpointCompatible(t *testing.T) {
	e := setupService(t)
	e.tickToSlot(20)
	b1 := e.importBlock(1, e.genesis, 0)
	b8 := e.importBlock(8, b1, 0)
	b16 := e.importBlock(16, b8, 0)
	e.commit(func(tx *store.Transaction) {
		cp := types.Checkpoint{Epoch: 2, Root: b16}
		tx.SetJustifiedCheckpoint(cp)
		tx.SetFinalizedCheckpoint(cp)
	})

	tests := []struct {
		name string
		cp   types.Checkpoint
		want bool
	}{
		{name: "genesis epoch", cp: types.Checkpoint{Epoch: 0, Root: [32]byte{'z'}}, want: true},
		{name: "peer ahead", cp: types.Checkpoint{Epoch: 3, Root: [32]byte{'z'}}, want: true},
		{name: "same checkpoint", cp: types.Checkpoint{Epoch: 2, Root: b16}, want: true},
		{name: "same epoch, other root", cp: types.Checkpoint{Epoch: 2, Root: b8}, want: false},
		{name: "older ancestor", cp: types.Checkpoint{Epoch: 1, Root: b8}, want: true},
		{name: "older non-ancestor", cp: types.Checkpoint{Epoch: 1, Root: b1}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.service.IsFinalizedCheckpointCompatible(tt.cp))
		})
	}
}
