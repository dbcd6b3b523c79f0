package util

import (
	"github.com/prysmaticlabs/ghost/beacon-chain/state"
	"github.com/prysmaticlabs/ghost/consensus-types/interfaces"
)

// Decoder restores fixture blocks and states from their SSZ encoding.
type Decoder struct{}

// DecodeBlock --
func (Decoder) DecodeBlock(enc []byte) (interfaces.ReadOnlySignedBeaconBlock, error) {
	b := &SignedBeaconBlock{}
	if err := b.UnmarshalSSZ(enc); err != nil {
		return nil, err
	}
	return b, nil
}

// DecodeState --
func (Decoder) DecodeState(enc []byte) (state.ReadOnlyBeaconState, error) {
	st := &BeaconState{}
	if err := st.UnmarshalSSZ(enc); err != nil {
		return nil, err
	}
	return st, nil
}
