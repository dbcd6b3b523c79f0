package params

import "math"

// MainnetConfig returns the configuration to be used in the main network.
func MainnetConfig() *BeaconChainConfig {
	return mainnetBeaconConfig.Copy()
}

var mainnetBeaconConfig = &BeaconChainConfig{
	ConfigName: MainnetName,
	PresetBase: "mainnet",

	SecondsPerSlot:             12,
	SlotsPerEpoch:              32,
	SafeSlotsToUpdateJustified: 8,
	MinGenesisTime:             1606824000, // Dec 1, 2020, 12pm UTC.
	GenesisDelay:               604800,     // 1 week.
	GenesisEpoch:               0,
	GenesisSlot:                0,
	FarFutureEpoch:             math.MaxUint64,

	MaxEffectiveBalance:       32 * 1e9,
	EffectiveBalanceIncrement: 1 * 1e9,

	ZeroHash: [32]byte{},

	TickIntervalMillis: 500,
	HeadCacheSize:      64,
	PersistQueueSize:   1024,
}
