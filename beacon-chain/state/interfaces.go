// Package state defines the read-only beacon state view that fork choice keeps
// per block and per checkpoint. States are never mutated once handed to the store.
package state

import (
	"context"

	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
)

// ReadOnlyBeaconState defines a struct which only has read access to beacon state methods.
type ReadOnlyBeaconState interface {
	Slot() primitives.Slot
	GenesisTime() uint64
	CurrentJustifiedCheckpoint() types.Checkpoint
	FinalizedCheckpoint() types.Checkpoint
	NumValidators() int
	ValidatorAtIndexReadOnly(idx primitives.ValidatorIndex) (ReadOnlyValidator, error)
	ReadFromEveryValidator(f func(idx int, val ReadOnlyValidator) error) error
	HashTreeRoot(ctx context.Context) ([32]byte, error)
	IsNil() bool
}

// ReadOnlyValidator defines a struct which only has read access to validator methods.
type ReadOnlyValidator interface {
	EffectiveBalance() uint64
	ActivationEpoch() primitives.Epoch
	ExitEpoch() primitives.Epoch
	Slashed() bool
	IsNil() bool
}
