// Package attestation defines the vote types consumed by attestation import.
package attestation

import (
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
	"github.com/prysmaticlabs/go-bitfield"
)

// Data is the content a committee votes on.
type Data struct {
	Slot            primitives.Slot  `json:"slot"`
	CommitteeIndex  uint64           `json:"committee_index"`
	BeaconBlockRoot [32]byte         `json:"beacon_block_root"`
	Source          types.Checkpoint `json:"source"`
	Target          types.Checkpoint `json:"target"`
}

// Attestation is an aggregated committee vote.
type Attestation struct {
	AggregationBits bitfield.Bitlist `json:"aggregation_bits"`
	Data            *Data            `json:"data"`
	Signature       [96]byte         `json:"signature"`
}

// Indexed is an attestation resolved to the validator indices that signed it.
type Indexed struct {
	AttestingIndices []primitives.ValidatorIndex `json:"attesting_indices"`
	Data             *Data                       `json:"data"`
	Signature        [96]byte                    `json:"signature"`
}

// IsNil reports whether the attestation or its data is missing.
func (a *Attestation) IsNil() bool {
	return a == nil || a.Data == nil
}
