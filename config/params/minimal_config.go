package params

// MinimalSpecConfig retrieves the minimal preset: short epochs for tests and local replays.
func MinimalSpecConfig() *BeaconChainConfig {
	minimalConfig := mainnetBeaconConfig.Copy()

	minimalConfig.SecondsPerSlot = 6
	minimalConfig.SlotsPerEpoch = 8
	minimalConfig.SafeSlotsToUpdateJustified = 2
	minimalConfig.MinGenesisTime = 1578009600
	minimalConfig.GenesisDelay = 300

	minimalConfig.ConfigName = MinimalName
	minimalConfig.PresetBase = "minimal"
	return minimalConfig
}
