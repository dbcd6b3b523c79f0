package kv

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/store"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/ghost/beacon-chain/state"
	"github.com/prysmaticlabs/ghost/config/params"
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
	"github.com/prysmaticlabs/ghost/testing/assert"
	"github.com/prysmaticlabs/ghost/testing/require"
	"github.com/prysmaticlabs/ghost/testing/util"
	"gopkg.in/d4l3k/messagediff.v1"
)

// setupDB instantiates and returns a Store instance.
func setupDB(t testing.TB) *Store {
	db, err := NewKVStore(t.TempDir())
	require.NoError(t, err, "Failed to instantiate DB")
	t.Cleanup(func() {
		require.NoError(t, db.Close(), "Failed to close database")
	})
	return db
}

func TestStore_ClearDB(t *testing.T) {
	db, err := NewKVStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, db.ClearDB())
	require.NoError(t, db.db.Close())
}

func TestStore_LoadSnapshotEmpty(t *testing.T) {
	db := setupDB(t)
	_, err := db.LoadSnapshot(context.Background(), util.Decoder{})
	require.ErrorIs(t, err, ErrNoSnapshot)
	_, found, err := db.CommitSeq(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_PersistAndRestore(t *testing.T) {
	params.SetupMinimalTestConfig(t)
	ctx := context.Background()
	db := setupDB(t)

	genesis, genesisState, err := util.Genesis(4, 0)
	require.NoError(t, err)
	s, err := store.NewGenesisStore(ctx, genesis, genesisState,
		store.WithPersister(db, 8),
	)
	require.NoError(t, err)

	child := util.NewBeaconBlock(9, genesis.Root())
	childState := genesisState.Copy()
	childState.StateSlot = 9
	childState.LatestBlockRoot = child.Root()
	finalized := types.Checkpoint{Epoch: 1, Root: child.Root()}

	tx := s.StartTransaction()
	tx.PutBlock(child.Root(), child)
	tx.PutBlockState(child.Root(), childState)
	tx.PutCheckpointState(finalized, childState)
	tx.SetLatestMessage(3, types.LatestMessage{Epoch: 1, Root: child.Root()})
	tx.SetTime(60)
	tx.SetJustifiedCheckpoint(finalized)
	tx.SetBestJustifiedCheckpoint(finalized)
	tx.SetFinalizedCheckpoint(finalized)
	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, s.Close(ctx))

	seq, found, err := db.CommitSeq(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, s.Snapshot().Seq(), seq)

	full, err := db.LoadSnapshot(ctx, util.Decoder{})
	require.NoError(t, err)
	assert.Equal(t, uint64(60), full.Time)
	assert.Equal(t, finalized, full.Justified)
	assert.Equal(t, finalized, full.BestJustified)
	assert.Equal(t, finalized, full.Finalized)
	assert.Len(t, full.Blocks, 2)
	assert.Len(t, full.BlockStates, 2)
	assert.Len(t, full.CheckpointStates, 2)
	assert.Equal(t, types.LatestMessage{Epoch: 1, Root: child.Root()}, full.LatestMessages[3])

	restoredBlock, ok := full.Blocks[child.Root()].(*util.SignedBeaconBlock)
	require.True(t, ok)
	assert.Equal(t, child.Root(), restoredBlock.Root())
	restoredState := full.BlockStates[child.Root()]
	wantRoot, err := childState.HashTreeRoot(ctx)
	require.NoError(t, err)
	gotRoot, err := restoredState.HashTreeRoot(ctx)
	require.NoError(t, err)
	if wantRoot != gotRoot {
		diff, _ := messagediff.PrettyDiff(childState, restoredState)
		t.Errorf("Restored state does not match the saved one: %s", diff)
	}

	restored, err := store.NewFromSnapshot(full)
	require.NoError(t, err)
	snap := restored.Snapshot()
	assert.Equal(t, seq, snap.Seq())
	assert.Equal(t, [][32]byte{child.Root()}, snap.Children(genesis.Root()))
	_, ok = snap.CheckpointState(finalized)
	assert.True(t, ok)

	history, err := db.FinalizedCheckpoints(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.Checkpoint{finalized}, history)
}

type flakyPersister struct {
	*Store
	failSeq uint64
}

func (p flakyPersister) SaveCommit(ctx context.Context, d *store.CommitDelta) error {
	if d.Seq == p.failSeq {
		return errors.New("write failed")
	}
	return p.Store.SaveCommit(ctx, d)
}

func TestStore_FailedCommitKeepsDatabaseConsistent(t *testing.T) {
	params.SetupMinimalTestConfig(t)
	ctx := context.Background()
	db := setupDB(t)

	genesis, genesisState, err := util.Genesis(4, 0)
	require.NoError(t, err)
	s, err := store.NewGenesisStore(ctx, genesis, genesisState, store.WithPersister(flakyPersister{Store: db, failSeq: 1}, 8))
	require.NoError(t, err)

	parent := genesis.Root()
	for slot := 1; slot <= 2; slot++ {
		blk := util.NewBeaconBlock(primitives.Slot(slot), parent)
		st := genesisState.Copy()
		st.StateSlot = primitives.Slot(slot)
		tx := s.StartTransaction()
		tx.PutBlock(blk.Root(), blk)
		tx.PutBlockState(blk.Root(), st)
		require.NoError(t, tx.Commit(ctx))
		parent = blk.Root()
	}
	require.Error(t, s.Close(ctx))
	assert.Equal(t, uint64(2), s.Snapshot().Seq())

	seq, found, err := db.CommitSeq(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint64(0), seq)

	full, err := db.LoadSnapshot(ctx, util.Decoder{})
	require.NoError(t, err)
	assert.Len(t, full.Blocks, 1)
	restored, err := store.NewFromSnapshot(full)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), restored.Snapshot().Seq())
}

func TestStore_FinalizedHistoryFollowsCommits(t *testing.T) {
	params.SetupMinimalTestConfig(t)
	ctx := context.Background()
	db := setupDB(t)

	genesis, genesisState, err := util.Genesis(4, 0)
	require.NoError(t, err)
	s, err := store.NewGenesisStore(ctx, genesis, genesisState, store.WithPersister(db, 8))
	require.NoError(t, err)

	tx := s.StartTransaction()
	tx.SetTime(30)
	require.NoError(t, tx.Commit(ctx))
	cp := types.Checkpoint{Epoch: 1, Root: genesis.Root()}
	tx = s.StartTransaction()
	tx.SetFinalizedCheckpoint(cp)
	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, s.Close(ctx))

	history, err := db.FinalizedCheckpoints(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.Checkpoint{cp}, history)
}

func TestStore_FinalizedCheckpointsOrdered(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	cps := []types.Checkpoint{
		{Epoch: 300, Root: [32]byte{3}},
		{Epoch: 2, Root: [32]byte{1}},
		{Epoch: 256, Root: [32]byte{2}},
	}
	for _, cp := range cps {
		require.NoError(t, db.SaveFinalizedCheckpoint(ctx, cp))
	}
	got, err := db.FinalizedCheckpoints(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.Checkpoint{cps[1], cps[2], cps[0]}, got)
}

func TestStore_SaveCommitRejectsNonSSZ(t *testing.T) {
	db := setupDB(t)
	d := &store.CommitDelta{
		BlockStates: map[[32]byte]state.ReadOnlyBeaconState{{1}: plainState{}},
	}
	err := db.SaveCommit(context.Background(), d)
	require.ErrorIs(t, err, ErrNotSSZ)
	_, found, err := db.CommitSeq(context.Background())
	require.NoError(t, err)
	assert.False(t, found, "nothing written")
}

type plainState struct {
	state.ReadOnlyBeaconState
}
