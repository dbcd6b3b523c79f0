package params

import (
	"sync"

	"github.com/pkg/errors"
)

const (
	// MainnetName is the name of the mainnet preset.
	MainnetName = "mainnet"
	// MinimalName is the name of the minimal preset.
	MinimalName = "minimal"
)

var (
	activeLock sync.RWMutex
	active     = MainnetConfig()
)

// BeaconConfig retrieves the active beacon chain config.
func BeaconConfig() *BeaconChainConfig {
	activeLock.RLock()
	defer activeLock.RUnlock()
	return active
}

// OverrideBeaconConfig by replacing the config. The preferred pattern is to
// call BeaconConfig(), change the specific parameters, and then call
// OverrideBeaconConfig(c). Any subsequent calls to params.BeaconConfig() will
// return this new configuration.
func OverrideBeaconConfig(c *BeaconChainConfig) {
	activeLock.Lock()
	defer activeLock.Unlock()
	active = c
}

// ByName returns a copy of a known preset.
func ByName(name string) (*BeaconChainConfig, error) {
	switch name {
	case MainnetName:
		return MainnetConfig(), nil
	case MinimalName:
		return MinimalSpecConfig(), nil
	default:
		return nil, errors.Errorf("unknown config name %q", name)
	}
}
