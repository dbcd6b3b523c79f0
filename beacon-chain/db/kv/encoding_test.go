package kv

import (
	"bytes"
	"testing"

	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/ghost/testing/assert"
	"github.com/prysmaticlabs/ghost/testing/require"
)

func TestCheckpointEncoding(t *testing.T) {
	cp := types.Checkpoint{Epoch: 7, Root: [32]byte{0xaa, 0xbb}}
	enc, err := encodeCheckpoint(cp)
	require.NoError(t, err)
	assert.Contains(t, string(enc), `"root":"0xaabb`)
	got, err := decodeCheckpoint(enc)
	require.NoError(t, err)
	assert.Equal(t, cp, got)

	_, err = decodeCheckpoint([]byte(`{"epoch":1,"root":"0x01"}`))
	require.Error(t, err)
}

func TestCheckpointKey(t *testing.T) {
	a := checkpointKey(types.Checkpoint{Epoch: 2, Root: [32]byte{0xff}})
	b := checkpointKey(types.Checkpoint{Epoch: 256, Root: [32]byte{0x01}})
	assert.Equal(t, -1, bytes.Compare(a, b), "keys sort by epoch first")

	cp, err := checkpointFromKey(b)
	require.NoError(t, err)
	assert.Equal(t, types.Checkpoint{Epoch: 256, Root: [32]byte{0x01}}, cp)
	_, err = checkpointFromKey(b[:39])
	require.Error(t, err)
}

func TestEncode_Nil(t *testing.T) {
	_, err := encode(nil)
	require.Error(t, err)
	var p *struct{}
	_, err = encode(p)
	require.Error(t, err)
	_, err = encode(struct{}{})
	require.ErrorIs(t, err, ErrNotSSZ)
}
