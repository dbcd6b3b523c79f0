// Package params defines the chain constants the fork choice core depends on.
package params

import (
	"github.com/mohae/deepcopy"
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
)

// BeaconChainConfig contains the constant configs the fork choice store needs to
// derive slots and epochs and to apply the justification update rules.
type BeaconChainConfig struct {
	ConfigName string `yaml:"CONFIG_NAME" spec:"true"`
	PresetBase string `yaml:"PRESET_BASE" spec:"true"`

	// Time parameters.
	SecondsPerSlot             uint64           `yaml:"SECONDS_PER_SLOT" spec:"true"`
	SlotsPerEpoch              primitives.Slot  `yaml:"SLOTS_PER_EPOCH" spec:"true"`
	SafeSlotsToUpdateJustified primitives.Slot  `yaml:"SAFE_SLOTS_TO_UPDATE_JUSTIFIED" spec:"true"`
	MinGenesisTime             uint64           `yaml:"MIN_GENESIS_TIME" spec:"true"`
	GenesisDelay               uint64           `yaml:"GENESIS_DELAY" spec:"true"`
	GenesisEpoch               primitives.Epoch `yaml:"GENESIS_EPOCH"`
	GenesisSlot                primitives.Slot  `yaml:"GENESIS_SLOT"`
	FarFutureEpoch             primitives.Epoch `yaml:"FAR_FUTURE_EPOCH"`

	// Gwei values.
	MaxEffectiveBalance       uint64 `yaml:"MAX_EFFECTIVE_BALANCE" spec:"true"`
	EffectiveBalanceIncrement uint64 `yaml:"EFFECTIVE_BALANCE_INCREMENT" spec:"true"`

	// Initial values.
	ZeroHash [32]byte `yaml:"-"`

	// Prysm-side tunables, not part of the protocol.
	TickIntervalMillis uint64 `yaml:"TICK_INTERVAL_MILLIS"`
	HeadCacheSize      int    `yaml:"HEAD_CACHE_SIZE"`
	PersistQueueSize   int    `yaml:"PERSIST_QUEUE_SIZE"`
}

// Copy returns a copy of the config object.
func (b *BeaconChainConfig) Copy() *BeaconChainConfig {
	config, ok := deepcopy.Copy(*b).(BeaconChainConfig)
	if !ok {
		config = *b
	}
	return &config
}
