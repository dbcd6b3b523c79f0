// Package types defines the value types shared by the fork choice store and algorithm.
package types

import (
	"fmt"

	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
	"github.com/prysmaticlabs/ghost/encoding/bytesutil"
)

// Checkpoint is an (epoch, root) pair identifying an epoch boundary candidate.
// Checkpoints are compared by value and are usable as map keys.
type Checkpoint struct {
	Epoch primitives.Epoch `json:"epoch"`
	Root  [32]byte         `json:"root"`
}

// String renders the checkpoint with a truncated root for log fields.
func (c Checkpoint) String() string {
	return fmt.Sprintf("%d/%#x", c.Epoch, bytesutil.Trunc(c.Root[:]))
}

// LatestMessage is the most recent vote known for a validator.
type LatestMessage struct {
	Epoch primitives.Epoch `json:"epoch"`
	Root  [32]byte         `json:"root"`
}
