// Package mock provides scenario-driven consensus collaborators for fork choice tests.
package mock

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/ghost/beacon-chain/core/helpers"
	"github.com/prysmaticlabs/ghost/beacon-chain/core/transition"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/ghost/beacon-chain/state"
	"github.com/prysmaticlabs/ghost/consensus-types/attestation"
	"github.com/prysmaticlabs/ghost/consensus-types/interfaces"
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
	"github.com/prysmaticlabs/ghost/testing/util"
	"github.com/prysmaticlabs/ghost/time/slots"
)

var (
	// ErrInvalidBlock is returned for blocks whose body is flagged invalid.
	ErrInvalidBlock = errors.New("block rejected by state transition")
	// ErrStateRootMismatch is returned when a block commits to a different post-state root.
	ErrStateRootMismatch = errors.New("state root mismatch")
	// ErrBadSignature is returned for attestations signed with BadSignature.
	ErrBadSignature = errors.New("invalid attestation signature")

	// BadSignature marks an attestation whose signature does not verify.
	BadSignature = [96]byte{0xba, 0xd0}
)

var (
	_ = transition.StateTransitioner(&Transitioner{})
	_ = transition.AttestationVerifier(&Verifier{})
)

// Transitioner applies fixture blocks: the post-state takes the block's slot and
// root, and picks up any non-empty checkpoints the block body carries.
type Transitioner struct {
	// BeforeProcessSlots, when set, runs at the start of every ProcessSlots call.
	BeforeProcessSlots func()

	transitions  int64
	processSlots int64
}

// ExecuteStateTransition --
func (m *Transitioner) ExecuteStateTransition(
	ctx context.Context,
	pre state.ReadOnlyBeaconState,
	signed interfaces.ReadOnlySignedBeaconBlock,
	validateStateRoot bool,
) (state.ReadOnlyBeaconState, error) {
	atomic.AddInt64(&m.transitions, 1)
	if err := interfaces.BeaconBlockIsNil(signed); err != nil {
		return nil, err
	}
	preState, ok := pre.(*util.BeaconState)
	if !ok {
		return nil, errors.Errorf("unsupported state type %T", pre)
	}
	blk, ok := signed.Block().(*util.BeaconBlock)
	if !ok {
		return nil, errors.Errorf("unsupported block type %T", signed.Block())
	}
	if blk.BlockSlot <= preState.StateSlot {
		return nil, errors.Errorf("block slot %d not after pre-state slot %d", blk.BlockSlot, preState.StateSlot)
	}
	if blk.BlockBody.Invalid {
		return nil, ErrInvalidBlock
	}
	post := preState.Copy()
	post.StateSlot = blk.BlockSlot
	root, err := blk.HashTreeRoot()
	if err != nil {
		return nil, err
	}
	post.LatestBlockRoot = root
	if blk.BlockBody.Justified != (types.Checkpoint{}) {
		post.Justified = blk.BlockBody.Justified
	}
	if blk.BlockBody.Finalized != (types.Checkpoint{}) {
		post.Finalized = blk.BlockBody.Finalized
	}
	if validateStateRoot && blk.State != [32]byte{} {
		postRoot, err := post.HashTreeRoot(ctx)
		if err != nil {
			return nil, err
		}
		if postRoot != blk.State {
			return nil, errors.Wrapf(ErrStateRootMismatch, "want %#x got %#x", blk.State, postRoot)
		}
	}
	return post, nil
}

// ProcessSlots --
func (m *Transitioner) ProcessSlots(_ context.Context, st state.ReadOnlyBeaconState, slot primitives.Slot) (state.ReadOnlyBeaconState, error) {
	atomic.AddInt64(&m.processSlots, 1)
	if m.BeforeProcessSlots != nil {
		m.BeforeProcessSlots()
	}
	s, ok := st.(*util.BeaconState)
	if !ok {
		return nil, errors.Errorf("unsupported state type %T", st)
	}
	if slot < s.StateSlot {
		return nil, errors.Errorf("cannot process slots backwards: %d < %d", slot, s.StateSlot)
	}
	post := s.Copy()
	post.StateSlot = slot
	return post, nil
}

// Transitions returns how many block transitions ran.
func (m *Transitioner) Transitions() int64 {
	return atomic.LoadInt64(&m.transitions)
}

// ProcessSlotsCalls returns how many empty-slot advancements ran.
func (m *Transitioner) ProcessSlotsCalls() int64 {
	return atomic.LoadInt64(&m.processSlots)
}

// Verifier treats bit i of the aggregation bits as validator i and accepts any
// signature other than BadSignature.
type Verifier struct{}

// IndexedAttestation --
func (Verifier) IndexedAttestation(_ context.Context, st state.ReadOnlyBeaconState, att *attestation.Attestation) (*attestation.Indexed, error) {
	if att.IsNil() {
		return nil, errors.New("nil attestation")
	}
	if att.AggregationBits.Len() != uint64(st.NumValidators()) {
		return nil, errors.Errorf("aggregation bits length %d, want %d", att.AggregationBits.Len(), st.NumValidators())
	}
	active, err := helpers.ActiveValidatorIndices(st, slots.ToEpoch(att.Data.Slot))
	if err != nil {
		return nil, err
	}
	indices := make([]primitives.ValidatorIndex, 0, len(active))
	for _, idx := range active {
		if att.AggregationBits.BitAt(uint64(idx)) {
			indices = append(indices, idx)
		}
	}
	return &attestation.Indexed{
		AttestingIndices: indices,
		Data:             att.Data,
		Signature:        att.Signature,
	}, nil
}

// VerifyIndexedAttestation --
func (Verifier) VerifyIndexedAttestation(_ context.Context, _ state.ReadOnlyBeaconState, indexed *attestation.Indexed) error {
	if len(indexed.AttestingIndices) == 0 {
		return errors.New("no attesting indices")
	}
	if indexed.Signature == BadSignature {
		return ErrBadSignature
	}
	return nil
}
