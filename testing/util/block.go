// Package util provides deterministic fixture blocks and states for fork choice tests.
package util

import (
	ssz "github.com/ferranbt/fastssz"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/ghost/consensus-types/interfaces"
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
)

const (
	bodySize        = 2*checkpointSize + 1 + 32
	blockSize       = 8 + 32 + 32 + bodySize
	signedBlockSize = blockSize + 96
)

// BeaconBlockBody carries the checkpoints the scenario state transition writes into
// the post-state, plus a flag that makes the transition reject the block.
type BeaconBlockBody struct {
	Justified types.Checkpoint
	Finalized types.Checkpoint
	Invalid   bool
	Graffiti  [32]byte
}

// BeaconBlock is a fixture block.
type BeaconBlock struct {
	BlockSlot primitives.Slot
	Parent    [32]byte
	State     [32]byte
	BlockBody *BeaconBlockBody
}

// SignedBeaconBlock is a fixture signed block.
type SignedBeaconBlock struct {
	Blk *BeaconBlock
	Sig [96]byte
}

var (
	_ = interfaces.ReadOnlySignedBeaconBlock(&SignedBeaconBlock{})
	_ = interfaces.ReadOnlyBeaconBlock(&BeaconBlock{})
	_ = interfaces.ReadOnlyBeaconBlockBody(&BeaconBlockBody{})
	_ = ssz.Marshaler(&SignedBeaconBlock{})
	_ = ssz.Unmarshaler(&SignedBeaconBlock{})
)

// NewBeaconBlock creates a block at slot with the given parent and an empty body.
func NewBeaconBlock(slot primitives.Slot, parent [32]byte) *SignedBeaconBlock {
	return &SignedBeaconBlock{
		Blk: &BeaconBlock{
			BlockSlot: slot,
			Parent:    parent,
			BlockBody: &BeaconBlockBody{},
		},
	}
}

// Block returns the underlying block.
func (b *SignedBeaconBlock) Block() interfaces.ReadOnlyBeaconBlock {
	return b.Blk
}

// Signature returns the block signature.
func (b *SignedBeaconBlock) Signature() [96]byte {
	return b.Sig
}

// IsNil checks if the block or its inner block is nil.
func (b *SignedBeaconBlock) IsNil() bool {
	return b == nil || b.Blk == nil
}

// Root returns the block's hash tree root, panicking on error. For tests only.
func (b *SignedBeaconBlock) Root() [32]byte {
	r, err := b.Blk.HashTreeRoot()
	if err != nil {
		panic(err)
	}
	return r
}

// MarshalSSZ ssz marshals the SignedBeaconBlock object
func (b *SignedBeaconBlock) MarshalSSZ() ([]byte, error) {
	return ssz.MarshalSSZ(b)
}

// MarshalSSZTo ssz marshals the SignedBeaconBlock object to a target array
func (b *SignedBeaconBlock) MarshalSSZTo(dst []byte) ([]byte, error) {
	if b.Blk == nil {
		b.Blk = &BeaconBlock{}
	}
	dst, err := b.Blk.MarshalSSZTo(dst)
	if err != nil {
		return nil, err
	}
	return append(dst, b.Sig[:]...), nil
}

// UnmarshalSSZ ssz unmarshals the SignedBeaconBlock object
func (b *SignedBeaconBlock) UnmarshalSSZ(buf []byte) error {
	if len(buf) != signedBlockSize {
		return ssz.ErrSize
	}
	b.Blk = &BeaconBlock{}
	if err := b.Blk.UnmarshalSSZ(buf[:blockSize]); err != nil {
		return err
	}
	copy(b.Sig[:], buf[blockSize:])
	return nil
}

// SizeSSZ returns the ssz encoded size in bytes for the SignedBeaconBlock object
func (b *SignedBeaconBlock) SizeSSZ() int {
	return signedBlockSize
}

// Slot of the block.
func (b *BeaconBlock) Slot() primitives.Slot {
	return b.BlockSlot
}

// ParentRoot of the block.
func (b *BeaconBlock) ParentRoot() [32]byte {
	return b.Parent
}

// StateRoot of the block.
func (b *BeaconBlock) StateRoot() [32]byte {
	return b.State
}

// Body of the block.
func (b *BeaconBlock) Body() interfaces.ReadOnlyBeaconBlockBody {
	return b.BlockBody
}

// IsNil checks if the block is nil.
func (b *BeaconBlock) IsNil() bool {
	return b == nil
}

// MarshalSSZTo ssz marshals the BeaconBlock object to a target array
func (b *BeaconBlock) MarshalSSZTo(dst []byte) ([]byte, error) {
	dst = ssz.MarshalUint64(dst, uint64(b.BlockSlot))
	dst = append(dst, b.Parent[:]...)
	dst = append(dst, b.State[:]...)
	if b.BlockBody == nil {
		b.BlockBody = &BeaconBlockBody{}
	}
	return b.BlockBody.MarshalSSZTo(dst)
}

// UnmarshalSSZ ssz unmarshals the BeaconBlock object
func (b *BeaconBlock) UnmarshalSSZ(buf []byte) error {
	if len(buf) != blockSize {
		return ssz.ErrSize
	}
	b.BlockSlot = primitives.Slot(ssz.UnmarshallUint64(buf[0:8]))
	copy(b.Parent[:], buf[8:40])
	copy(b.State[:], buf[40:72])
	b.BlockBody = &BeaconBlockBody{}
	return b.BlockBody.UnmarshalSSZ(buf[72:])
}

// HashTreeRoot ssz hashes the BeaconBlock object
func (b *BeaconBlock) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(b)
}

// HashTreeRootWith ssz hashes the BeaconBlock object with a hasher
func (b *BeaconBlock) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	hh.PutUint64(uint64(b.BlockSlot))
	hh.PutBytes(b.Parent[:])
	hh.PutBytes(b.State[:])
	body := b.BlockBody
	if body == nil {
		body = &BeaconBlockBody{}
	}
	if err := body.HashTreeRootWith(hh); err != nil {
		return err
	}
	hh.Merkleize(indx)
	return nil
}

// IsNil checks if the body is nil.
func (b *BeaconBlockBody) IsNil() bool {
	return b == nil
}

// MarshalSSZTo ssz marshals the BeaconBlockBody object to a target array
func (b *BeaconBlockBody) MarshalSSZTo(dst []byte) ([]byte, error) {
	dst = marshalCheckpoint(dst, b.Justified)
	dst = marshalCheckpoint(dst, b.Finalized)
	dst = ssz.MarshalBool(dst, b.Invalid)
	return append(dst, b.Graffiti[:]...), nil
}

// UnmarshalSSZ ssz unmarshals the BeaconBlockBody object
func (b *BeaconBlockBody) UnmarshalSSZ(buf []byte) error {
	if len(buf) != bodySize {
		return ssz.ErrSize
	}
	var err error
	if b.Justified, err = unmarshalCheckpoint(buf[0:40]); err != nil {
		return err
	}
	if b.Finalized, err = unmarshalCheckpoint(buf[40:80]); err != nil {
		return err
	}
	b.Invalid = ssz.UnmarshalBool(buf[80:81])
	copy(b.Graffiti[:], buf[81:113])
	return nil
}

// HashTreeRoot ssz hashes the BeaconBlockBody object
func (b *BeaconBlockBody) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(b)
}

// HashTreeRootWith ssz hashes the BeaconBlockBody object with a hasher
func (b *BeaconBlockBody) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	hashCheckpoint(hh, b.Justified)
	hashCheckpoint(hh, b.Finalized)
	hh.PutBool(b.Invalid)
	hh.PutBytes(b.Graffiti[:])
	hh.Merkleize(indx)
	return nil
}
