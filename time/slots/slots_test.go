package slots

import (
	"math"
	"testing"

	"github.com/prysmaticlabs/ghost/config/params"
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
	"github.com/prysmaticlabs/ghost/testing/assert"
	"github.com/prysmaticlabs/ghost/testing/require"
)

func TestToEpoch_OK(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	params.OverrideBeaconConfig(params.MainnetConfig())
	tests := []struct {
		slot  primitives.Slot
		epoch primitives.Epoch
	}{
		{slot: 0, epoch: 0},
		{slot: 31, epoch: 0},
		{slot: 32, epoch: 1},
		{slot: 50, epoch: 1},
		{slot: 64, epoch: 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.epoch, ToEpoch(tt.slot), "ToEpoch(%d)", tt.slot)
	}
}

func TestEpochStart(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	params.OverrideBeaconConfig(params.MainnetConfig())
	s, err := EpochStart(2)
	require.NoError(t, err)
	assert.Equal(t, primitives.Slot(64), s)

	_, err = EpochStart(math.MaxUint64)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overflows")
	assert.Panics(t, func() { UnsafeEpochStart(math.MaxUint64) })
}

func TestSinceEpochStarts(t *testing.T) {
	params.SetupMinimalTestConfig(t)
	assert.Equal(t, primitives.Slot(0), SinceEpochStarts(8))
	assert.Equal(t, primitives.Slot(3), SinceEpochStarts(11))
	assert.True(t, IsEpochStart(16))
	assert.False(t, IsEpochStart(17))
}

func TestAtTime(t *testing.T) {
	params.SetupMinimalTestConfig(t) // 6 seconds per slot.
	assert.Equal(t, primitives.Slot(0), AtTime(100, 50))
	assert.Equal(t, primitives.Slot(0), AtTime(100, 105))
	assert.Equal(t, primitives.Slot(1), AtTime(100, 106))
	assert.Equal(t, primitives.Slot(10), AtTime(100, 160))
}

func TestStartTime(t *testing.T) {
	params.SetupMinimalTestConfig(t)
	st, err := StartTime(100, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(118), st)
	_, err = StartTime(100, math.MaxUint64)
	require.Error(t, err)
}

func TestPrevEpoch(t *testing.T) {
	params.SetupMinimalTestConfig(t)
	assert.Equal(t, primitives.Epoch(0), PrevEpoch(3))
	assert.Equal(t, primitives.Epoch(0), PrevEpoch(8))
	assert.Equal(t, primitives.Epoch(1), PrevEpoch(16))
}
