package blockchain

import (
	"fmt"

	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/store"
	"github.com/prysmaticlabs/ghost/consensus-types/interfaces"
	"github.com/prysmaticlabs/ghost/encoding/bytesutil"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "blockchain")

func rootString(r [32]byte) string {
	return fmt.Sprintf("%#x", bytesutil.Trunc(r[:]))
}

// logBlockImported logs the outcome of a committed block import.
func logBlockImported(root [32]byte, signed interfaces.ReadOnlySignedBeaconBlock, view store.ReadOnlyStore) {
	b := signed.Block()
	log.WithFields(logrus.Fields{
		"slot":               b.Slot(),
		"root":               rootString(root),
		"parentRoot":         rootString(b.ParentRoot()),
		"justifiedEpoch":     view.JustifiedCheckpoint().Epoch,
		"bestJustifiedEpoch": view.BestJustifiedCheckpoint().Epoch,
		"finalizedEpoch":     view.FinalizedCheckpoint().Epoch,
	}).Info("Imported block")
}
