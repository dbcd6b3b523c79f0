package interfaces

import "github.com/pkg/errors"

// ErrNilObjectWrapped is returned when a block or one of its parts is nil.
var ErrNilObjectWrapped = errors.New("attempted to wrap nil object")

// BeaconBlockIsNil checks if any composite field of input signed beacon block is nil.
// Access to these nil fields will result in run time panic,
// it is recommended to run these checks as first line of defense.
func BeaconBlockIsNil(b ReadOnlySignedBeaconBlock) error {
	if b == nil || b.IsNil() {
		return ErrNilObjectWrapped
	}
	blk := b.Block()
	if blk == nil || blk.IsNil() {
		return ErrNilObjectWrapped
	}
	if body := blk.Body(); body == nil || body.IsNil() {
		return ErrNilObjectWrapped
	}
	return nil
}
