package params

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// UnmarshalConfig unmarshals a chain config yaml document on top of the preset it declares.
// Unknown keys are rejected.
func UnmarshalConfig(yamlFile []byte) (*BeaconChainConfig, error) {
	// Default to using mainnet.
	conf := MainnetConfig()
	// To track if config name is defined inside config file.
	hasConfigName := false
	for _, line := range strings.Split(string(yamlFile), "\n") {
		if strings.HasPrefix(line, "CONFIG_NAME") {
			hasConfigName = true
		}
		if strings.HasPrefix(line, "PRESET_BASE: 'minimal'") ||
			strings.HasPrefix(line, `PRESET_BASE: "minimal"`) ||
			strings.HasPrefix(line, "PRESET_BASE: minimal") ||
			strings.HasPrefix(line, "# Minimal preset") {
			conf = MinimalSpecConfig()
		}
	}
	if err := yaml.UnmarshalStrict(yamlFile, conf); err != nil {
		return nil, errors.Wrap(err, "could not parse chain config yaml")
	}
	if !hasConfigName {
		conf.ConfigName = "devnet"
	}
	if conf.SlotsPerEpoch == 0 {
		return nil, errors.New("SLOTS_PER_EPOCH must be positive")
	}
	if conf.SecondsPerSlot == 0 {
		return nil, errors.New("SECONDS_PER_SLOT must be positive")
	}
	if conf.SafeSlotsToUpdateJustified > conf.SlotsPerEpoch {
		return nil, errors.Errorf("SAFE_SLOTS_TO_UPDATE_JUSTIFIED %d exceeds SLOTS_PER_EPOCH %d",
			conf.SafeSlotsToUpdateJustified, conf.SlotsPerEpoch)
	}
	return conf, nil
}

// LoadChainConfigFile loads, unmarshals and applies a beacon chain config file.
func LoadChainConfigFile(chainConfigFileName string) error {
	yamlFile, err := os.ReadFile(chainConfigFileName) // #nosec G304
	if err != nil {
		return errors.Wrap(err, "could not read chain config file")
	}
	conf, err := UnmarshalConfig(yamlFile)
	if err != nil {
		return err
	}
	log.Debugf("Config file values: %+v", conf)
	OverrideBeaconConfig(conf)
	return nil
}

// ConfigToYaml takes a provided config and outputs its contents in yaml.
func ConfigToYaml(cfg *BeaconChainConfig) ([]byte, error) {
	return yaml.Marshal(cfg)
}
