// Package helpers contains the validator helpers used to weigh fork choice votes.
package helpers

import (
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/ghost/beacon-chain/state"
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
	"github.com/prysmaticlabs/ghost/time/slots"
)

// ErrNilState is returned when a nil state is passed to a helper.
var ErrNilState = errors.New("nil state")

// IsActiveValidator returns the boolean value on whether the validator
// is active or not.
//
// Spec pseudocode definition:
//
//	def is_active_validator(validator: Validator, epoch: Epoch) -> bool:
//	  """
//	  Check if ``validator`` is active.
//	  """
//	  return validator.activation_epoch <= epoch < validator.exit_epoch
func IsActiveValidator(validator state.ReadOnlyValidator, epoch primitives.Epoch) bool {
	return validator.ActivationEpoch() <= epoch && epoch < validator.ExitEpoch()
}

// ActiveValidatorIndices filters out active validators based on validator status
// and returns their indices in a list.
//
// Spec pseudocode definition:
//
//	def get_active_validator_indices(state: BeaconState, epoch: Epoch) -> Sequence[ValidatorIndex]:
//	  """
//	  Return the sequence of active validator indices at ``epoch``.
//	  """
//	  return [ValidatorIndex(i) for i, v in enumerate(state.validators) if is_active_validator(v, epoch)]
func ActiveValidatorIndices(st state.ReadOnlyBeaconState, epoch primitives.Epoch) ([]primitives.ValidatorIndex, error) {
	if st == nil || st.IsNil() {
		return nil, ErrNilState
	}
	indices := make([]primitives.ValidatorIndex, 0, st.NumValidators())
	if err := st.ReadFromEveryValidator(func(idx int, val state.ReadOnlyValidator) error {
		if IsActiveValidator(val, epoch) {
			indices = append(indices, primitives.ValidatorIndex(idx))
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return indices, nil
}

// EffectiveBalances returns the fork choice weight of every validator in the state,
// indexed by validator index. Validators that are not active at the state's
// current epoch carry zero weight.
func EffectiveBalances(st state.ReadOnlyBeaconState) ([]uint64, error) {
	if st == nil || st.IsNil() {
		return nil, ErrNilState
	}
	epoch := slots.ToEpoch(st.Slot())
	balances := make([]uint64, st.NumValidators())
	if err := st.ReadFromEveryValidator(func(idx int, val state.ReadOnlyValidator) error {
		if IsActiveValidator(val, epoch) {
			balances[idx] = val.EffectiveBalance()
		}
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "could not read validators")
	}
	return balances, nil
}
