// Package transition declares the consensus rule engine collaborators that fork
// choice delegates to. Implementations must be deterministic and must not mutate
// the states they are given.
package transition

import (
	"context"

	"github.com/prysmaticlabs/ghost/beacon-chain/state"
	"github.com/prysmaticlabs/ghost/consensus-types/attestation"
	"github.com/prysmaticlabs/ghost/consensus-types/interfaces"
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
)

// StateTransitioner computes post-states.
type StateTransitioner interface {
	// ExecuteStateTransition applies the block to a copy of the pre-state and returns the post-state.
	ExecuteStateTransition(
		ctx context.Context,
		pre state.ReadOnlyBeaconState,
		signed interfaces.ReadOnlySignedBeaconBlock,
		validateStateRoot bool,
	) (state.ReadOnlyBeaconState, error)
	// ProcessSlots advances a copy of the state through empty slots up to slot.
	ProcessSlots(ctx context.Context, st state.ReadOnlyBeaconState, slot primitives.Slot) (state.ReadOnlyBeaconState, error)
}

// AttestationVerifier resolves and validates attestation committees and signatures.
type AttestationVerifier interface {
	IndexedAttestation(ctx context.Context, st state.ReadOnlyBeaconState, att *attestation.Attestation) (*attestation.Indexed, error)
	VerifyIndexedAttestation(ctx context.Context, st state.ReadOnlyBeaconState, indexed *attestation.Indexed) error
}
