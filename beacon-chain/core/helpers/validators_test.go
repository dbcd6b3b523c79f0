package helpers_test

import (
	"testing"

	"github.com/prysmaticlabs/ghost/beacon-chain/core/helpers"
	"github.com/prysmaticlabs/ghost/config/params"
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
	"github.com/prysmaticlabs/ghost/testing/assert"
	"github.com/prysmaticlabs/ghost/testing/require"
	"github.com/prysmaticlabs/ghost/testing/util"
)

func TestIsActiveValidator_OK(t *testing.T) {
	tests := []struct {
		a primitives.Epoch
		b bool
	}{
		{a: 0, b: false},
		{a: 10, b: true},
		{a: 100, b: false},
		{a: 1000, b: false},
		{a: 64, b: true},
	}
	for _, test := range tests {
		validator := &util.Validator{Activation: 10, Exit: 100}
		assert.Equal(t, test.b, helpers.IsActiveValidator(validator, test.a), "epoch %d", test.a)
	}
}

func TestActiveValidatorIndices(t *testing.T) {
	st := util.NewBeaconState(4, 0)
	st.Validators[1].Activation = 5
	st.Validators[3].Exit = 0
	indices, err := helpers.ActiveValidatorIndices(st, 0)
	require.NoError(t, err)
	assert.Equal(t, []primitives.ValidatorIndex{0, 2}, indices)

	_, err = helpers.ActiveValidatorIndices(nil, 0)
	require.ErrorIs(t, err, helpers.ErrNilState)
}

func TestEffectiveBalances_InactiveCarryZero(t *testing.T) {
	params.SetupMinimalTestConfig(t)
	st := util.NewBeaconState(3, 0)
	st.StateSlot = 16 // epoch 2
	st.Validators[0].Exit = 2
	st.Validators[2].Balance = 7
	balances, err := helpers.EffectiveBalances(st)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, params.BeaconConfig().MaxEffectiveBalance, 7}, balances)
}
