// Package interfaces defines the read-only block views consumed by fork choice.
package interfaces

import (
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
)

// ReadOnlySignedBeaconBlock is an interface describing the method set of
// a signed beacon block.
type ReadOnlySignedBeaconBlock interface {
	Block() ReadOnlyBeaconBlock
	Signature() [96]byte
	IsNil() bool
}

// ReadOnlyBeaconBlock describes an interface which states the methods
// employed by an object that is a beacon block.
type ReadOnlyBeaconBlock interface {
	Slot() primitives.Slot
	ParentRoot() [32]byte
	StateRoot() [32]byte
	Body() ReadOnlyBeaconBlockBody
	HashTreeRoot() ([32]byte, error)
	IsNil() bool
}

// ReadOnlyBeaconBlockBody describes the method set employed by an object
// that is a beacon block body.
type ReadOnlyBeaconBlockBody interface {
	HashTreeRoot() ([32]byte, error)
	IsNil() bool
}
