package mock

import (
	"context"
	"testing"

	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/ghost/consensus-types/attestation"
	"github.com/prysmaticlabs/ghost/testing/assert"
	"github.com/prysmaticlabs/ghost/testing/require"
	"github.com/prysmaticlabs/ghost/testing/util"
	"github.com/prysmaticlabs/go-bitfield"
)

func TestTransitioner_AppliesBodyCheckpoints(t *testing.T) {
	ctx := context.Background()
	genesis, st, err := util.Genesis(2, 0)
	require.NoError(t, err)
	blk := util.NewBeaconBlock(3, genesis.Root())
	blk.Blk.BlockBody.Justified = types.Checkpoint{Epoch: 1, Root: genesis.Root()}

	tr := &Transitioner{}
	post, err := tr.ExecuteStateTransition(ctx, st, blk, true)
	require.NoError(t, err)
	assert.Equal(t, blk.Blk.BlockSlot, post.Slot())
	assert.Equal(t, blk.Blk.BlockBody.Justified, post.CurrentJustifiedCheckpoint())
	assert.Equal(t, st.Finalized, post.FinalizedCheckpoint())
	assert.Equal(t, int64(1), tr.Transitions())
	// Pre-state untouched.
	assert.Equal(t, types.Checkpoint{}, st.Justified)
}

func TestTransitioner_Rejects(t *testing.T) {
	ctx := context.Background()
	genesis, st, err := util.Genesis(2, 0)
	require.NoError(t, err)

	invalid := util.NewBeaconBlock(1, genesis.Root())
	invalid.Blk.BlockBody.Invalid = true
	_, err = (&Transitioner{}).ExecuteStateTransition(ctx, st, invalid, true)
	require.ErrorIs(t, err, ErrInvalidBlock)

	badRoot := util.NewBeaconBlock(1, genesis.Root())
	badRoot.Blk.State = [32]byte{'x'}
	_, err = (&Transitioner{}).ExecuteStateTransition(ctx, st, badRoot, true)
	require.ErrorIs(t, err, ErrStateRootMismatch)
	_, err = (&Transitioner{}).ExecuteStateTransition(ctx, st, badRoot, false)
	require.NoError(t, err)
}

func TestTransitioner_ProcessSlots(t *testing.T) {
	st := util.NewBeaconState(1, 0)
	st.StateSlot = 4
	tr := &Transitioner{}
	post, err := tr.ProcessSlots(context.Background(), st, 8)
	require.NoError(t, err)
	assert.Equal(t, 8, int(post.Slot()))
	_, err = tr.ProcessSlots(context.Background(), st, 2)
	require.Error(t, err)
	assert.Equal(t, int64(2), tr.ProcessSlotsCalls())
}

func TestVerifier(t *testing.T) {
	ctx := context.Background()
	st := util.NewBeaconState(4, 0)
	bits := bitfield.NewBitlist(4)
	bits.SetBitAt(1, true)
	bits.SetBitAt(3, true)
	att := &attestation.Attestation{AggregationBits: bits, Data: &attestation.Data{}}

	v := Verifier{}
	indexed, err := v.IndexedAttestation(ctx, st, att)
	require.NoError(t, err)
	assert.Len(t, indexed.AttestingIndices, 2)
	require.NoError(t, v.VerifyIndexedAttestation(ctx, st, indexed))

	indexed.Signature = BadSignature
	require.ErrorIs(t, v.VerifyIndexedAttestation(ctx, st, indexed), ErrBadSignature)

	_, err = v.IndexedAttestation(ctx, st, &attestation.Attestation{AggregationBits: bitfield.NewBitlist(2), Data: &attestation.Data{}})
	require.Error(t, err)
}
