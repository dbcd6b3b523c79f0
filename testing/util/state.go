package util

import (
	"context"

	ssz "github.com/ferranbt/fastssz"
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/ghost/beacon-chain/state"
	"github.com/prysmaticlabs/ghost/config/params"
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
)

const (
	validatorSize          = 8 + 8 + 8 + 1
	stateFixedSize         = 8 + 8 + 32 + 2*checkpointSize + 4
	validatorRegistryLimit = 1 << 20
)

// Validator is a fixture validator record.
type Validator struct {
	Balance    uint64
	Activation primitives.Epoch
	Exit       primitives.Epoch
	IsSlashed  bool
}

// BeaconState is a fixture state. Treat values handed to a store as immutable;
// use Copy before changing a field.
type BeaconState struct {
	StateSlot       primitives.Slot
	Genesis         uint64
	LatestBlockRoot [32]byte
	Justified       types.Checkpoint
	Finalized       types.Checkpoint
	Validators      []*Validator
}

var (
	_ = state.ReadOnlyBeaconState(&BeaconState{})
	_ = state.ReadOnlyValidator(&Validator{})
	_ = ssz.Marshaler(&BeaconState{})
	_ = ssz.Unmarshaler(&BeaconState{})
)

// NewBeaconState returns a genesis state with n active validators at max effective balance.
func NewBeaconState(n int, genesisTime uint64) *BeaconState {
	cfg := params.BeaconConfig()
	vals := make([]*Validator, n)
	for i := range vals {
		vals[i] = &Validator{
			Balance:    cfg.MaxEffectiveBalance,
			Activation: cfg.GenesisEpoch,
			Exit:       cfg.FarFutureEpoch,
		}
	}
	return &BeaconState{
		StateSlot:  cfg.GenesisSlot,
		Genesis:    genesisTime,
		Validators: vals,
	}
}

// Genesis builds a matching anchor block and state. The block's state root commits to the state.
func Genesis(n int, genesisTime uint64) (*SignedBeaconBlock, *BeaconState, error) {
	st := NewBeaconState(n, genesisTime)
	root, err := st.HashTreeRoot(context.Background())
	if err != nil {
		return nil, nil, err
	}
	blk := NewBeaconBlock(st.StateSlot, params.BeaconConfig().ZeroHash)
	blk.Blk.State = root
	return blk, st, nil
}

// Copy returns a deep copy of the state.
func (s *BeaconState) Copy() *BeaconState {
	cp := *s
	cp.Validators = make([]*Validator, len(s.Validators))
	for i, v := range s.Validators {
		vc := *v
		cp.Validators[i] = &vc
	}
	return &cp
}

// Slot of the state.
func (s *BeaconState) Slot() primitives.Slot {
	return s.StateSlot
}

// GenesisTime of the chain.
func (s *BeaconState) GenesisTime() uint64 {
	return s.Genesis
}

// CurrentJustifiedCheckpoint of the state.
func (s *BeaconState) CurrentJustifiedCheckpoint() types.Checkpoint {
	return s.Justified
}

// FinalizedCheckpoint of the state.
func (s *BeaconState) FinalizedCheckpoint() types.Checkpoint {
	return s.Finalized
}

// NumValidators in the registry.
func (s *BeaconState) NumValidators() int {
	return len(s.Validators)
}

// ValidatorAtIndexReadOnly returns the validator at index.
func (s *BeaconState) ValidatorAtIndexReadOnly(idx primitives.ValidatorIndex) (state.ReadOnlyValidator, error) {
	if uint64(idx) >= uint64(len(s.Validators)) {
		return nil, errors.Errorf("index %d out of range", idx)
	}
	return s.Validators[idx], nil
}

// ReadFromEveryValidator calls f on every validator in index order.
func (s *BeaconState) ReadFromEveryValidator(f func(idx int, val state.ReadOnlyValidator) error) error {
	for i, v := range s.Validators {
		if err := f(i, v); err != nil {
			return err
		}
	}
	return nil
}

// IsNil checks if the state is nil.
func (s *BeaconState) IsNil() bool {
	return s == nil
}

// HashTreeRoot ssz hashes the BeaconState object.
func (s *BeaconState) HashTreeRoot(_ context.Context) ([32]byte, error) {
	hh := ssz.DefaultHasherPool.Get()
	defer ssz.DefaultHasherPool.Put(hh)
	if err := s.HashTreeRootWith(hh); err != nil {
		return [32]byte{}, err
	}
	return hh.HashRoot()
}

// HashTreeRootWith ssz hashes the BeaconState object with a hasher
func (s *BeaconState) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	hh.PutUint64(uint64(s.StateSlot))
	hh.PutUint64(s.Genesis)
	hh.PutBytes(s.LatestBlockRoot[:])
	hashCheckpoint(hh, s.Justified)
	hashCheckpoint(hh, s.Finalized)
	{
		subIndx := hh.Index()
		num := uint64(len(s.Validators))
		if num > validatorRegistryLimit {
			return ssz.ErrIncorrectListSize
		}
		for _, v := range s.Validators {
			if err := v.HashTreeRootWith(hh); err != nil {
				return err
			}
		}
		hh.MerkleizeWithMixin(subIndx, num, validatorRegistryLimit)
	}
	hh.Merkleize(indx)
	return nil
}

// MarshalSSZ ssz marshals the BeaconState object
func (s *BeaconState) MarshalSSZ() ([]byte, error) {
	return ssz.MarshalSSZ(s)
}

// MarshalSSZTo ssz marshals the BeaconState object to a target array
func (s *BeaconState) MarshalSSZTo(dst []byte) ([]byte, error) {
	if len(s.Validators) > validatorRegistryLimit {
		return nil, ssz.ErrIncorrectListSize
	}
	dst = ssz.MarshalUint64(dst, uint64(s.StateSlot))
	dst = ssz.MarshalUint64(dst, s.Genesis)
	dst = append(dst, s.LatestBlockRoot[:]...)
	dst = marshalCheckpoint(dst, s.Justified)
	dst = marshalCheckpoint(dst, s.Finalized)
	// Offset (5) 'Validators'
	dst = ssz.WriteOffset(dst, stateFixedSize)
	for _, v := range s.Validators {
		dst = v.marshalSSZTo(dst)
	}
	return dst, nil
}

// UnmarshalSSZ ssz unmarshals the BeaconState object
func (s *BeaconState) UnmarshalSSZ(buf []byte) error {
	size := uint64(len(buf))
	if size < stateFixedSize {
		return ssz.ErrSize
	}
	s.StateSlot = primitives.Slot(ssz.UnmarshallUint64(buf[0:8]))
	s.Genesis = ssz.UnmarshallUint64(buf[8:16])
	copy(s.LatestBlockRoot[:], buf[16:48])
	var err error
	if s.Justified, err = unmarshalCheckpoint(buf[48:88]); err != nil {
		return err
	}
	if s.Finalized, err = unmarshalCheckpoint(buf[88:128]); err != nil {
		return err
	}
	if o := ssz.ReadOffset(buf[128:132]); o != stateFixedSize {
		return ssz.ErrOffset
	}
	tail := buf[stateFixedSize:]
	if len(tail)%validatorSize != 0 {
		return ssz.ErrSize
	}
	num := len(tail) / validatorSize
	if num > validatorRegistryLimit {
		return ssz.ErrIncorrectListSize
	}
	s.Validators = make([]*Validator, num)
	for i := range s.Validators {
		s.Validators[i] = &Validator{}
		s.Validators[i].unmarshalSSZ(tail[i*validatorSize : (i+1)*validatorSize])
	}
	return nil
}

// SizeSSZ returns the ssz encoded size in bytes for the BeaconState object
func (s *BeaconState) SizeSSZ() int {
	return stateFixedSize + len(s.Validators)*validatorSize
}

// EffectiveBalance of the validator.
func (v *Validator) EffectiveBalance() uint64 {
	return v.Balance
}

// ActivationEpoch of the validator.
func (v *Validator) ActivationEpoch() primitives.Epoch {
	return v.Activation
}

// ExitEpoch of the validator.
func (v *Validator) ExitEpoch() primitives.Epoch {
	return v.Exit
}

// Slashed reports whether the validator was slashed.
func (v *Validator) Slashed() bool {
	return v.IsSlashed
}

// IsNil checks if the validator is nil.
func (v *Validator) IsNil() bool {
	return v == nil
}

func (v *Validator) marshalSSZTo(dst []byte) []byte {
	dst = ssz.MarshalUint64(dst, v.Balance)
	dst = ssz.MarshalUint64(dst, uint64(v.Activation))
	dst = ssz.MarshalUint64(dst, uint64(v.Exit))
	return ssz.MarshalBool(dst, v.IsSlashed)
}

func (v *Validator) unmarshalSSZ(buf []byte) {
	v.Balance = ssz.UnmarshallUint64(buf[0:8])
	v.Activation = primitives.Epoch(ssz.UnmarshallUint64(buf[8:16]))
	v.Exit = primitives.Epoch(ssz.UnmarshallUint64(buf[16:24]))
	v.IsSlashed = ssz.UnmarshalBool(buf[24:25])
}

// HashTreeRootWith ssz hashes the Validator object with a hasher
func (v *Validator) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	hh.PutUint64(v.Balance)
	hh.PutUint64(uint64(v.Activation))
	hh.PutUint64(uint64(v.Exit))
	hh.PutBool(v.IsSlashed)
	hh.Merkleize(indx)
	return nil
}
