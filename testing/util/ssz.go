package util

import (
	ssz "github.com/ferranbt/fastssz"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
)

const checkpointSize = 40

func marshalCheckpoint(dst []byte, c types.Checkpoint) []byte {
	dst = ssz.MarshalUint64(dst, uint64(c.Epoch))
	return append(dst, c.Root[:]...)
}

func unmarshalCheckpoint(buf []byte) (types.Checkpoint, error) {
	if len(buf) != checkpointSize {
		return types.Checkpoint{}, ssz.ErrSize
	}
	var c types.Checkpoint
	c.Epoch = primitives.Epoch(ssz.UnmarshallUint64(buf[0:8]))
	copy(c.Root[:], buf[8:40])
	return c, nil
}

func hashCheckpoint(hh *ssz.Hasher, c types.Checkpoint) {
	indx := hh.Index()
	hh.PutUint64(uint64(c.Epoch))
	hh.PutBytes(c.Root[:])
	hh.Merkleize(indx)
}
