// Package forkchoice replays scripted fork choice scenarios through the blockchain
// service using fixture blocks and scenario-driven consensus collaborators.
package forkchoice

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Scenario is a scripted sequence of ticks, blocks, attestations and checks.
//
//	validators: 10
//	genesis_time: 0
//	steps:
//	  - tick: 6
//	  - block: {name: a, slot: 1, parent: genesis}
//	  - attestation: {slot: 1, block: a, target: {epoch: 0, block: genesis}, validators: [0, 1]}
//	  - checks: {head: a}
type Scenario struct {
	Validators  int    `yaml:"validators"`
	GenesisTime uint64 `yaml:"genesis_time"`
	Steps       []Step `yaml:"steps"`
}

// Step holds exactly one of its fields.
type Step struct {
	Tick        *uint64      `yaml:"tick,omitempty"`
	Block       *Block       `yaml:"block,omitempty"`
	Attestation *Attestation `yaml:"attestation,omitempty"`
	Checks      *Check       `yaml:"checks,omitempty"`
}

// Block describes a fixture block. Parent and checkpoint blocks are referenced by name,
// "genesis", or a 0x-prefixed root. Valid defaults to true.
type Block struct {
	Name      string      `yaml:"name"`
	Slot      uint64      `yaml:"slot"`
	Parent    string      `yaml:"parent"`
	Graffiti  uint8       `yaml:"graffiti,omitempty"`
	Justified *Checkpoint `yaml:"justified,omitempty"`
	Finalized *Checkpoint `yaml:"finalized,omitempty"`
	Invalid   bool        `yaml:"invalid,omitempty"`
	Valid     *bool       `yaml:"valid,omitempty"`
}

// Attestation describes an attestation by the listed validator indices. Outcome is
// one of applied (default), deferred or invalid.
type Attestation struct {
	Slot       uint64     `yaml:"slot"`
	Block      string     `yaml:"block"`
	Target     Checkpoint `yaml:"target"`
	Validators []uint64   `yaml:"validators"`
	BadSig     bool       `yaml:"bad_signature,omitempty"`
	Outcome    string     `yaml:"outcome,omitempty"`
}

// Checkpoint references a block by name or root.
type Checkpoint struct {
	Epoch uint64 `yaml:"epoch"`
	Block string `yaml:"block"`
}

// Check compares store values with expectations. Unset fields are not checked.
type Check struct {
	Head          string      `yaml:"head,omitempty"`
	Time          *uint64     `yaml:"time,omitempty"`
	Justified     *Checkpoint `yaml:"justified,omitempty"`
	BestJustified *Checkpoint `yaml:"best_justified,omitempty"`
	Finalized     *Checkpoint `yaml:"finalized,omitempty"`
}

const (
	outcomeApplied  = "applied"
	outcomeDeferred = "deferred"
	outcomeInvalid  = "invalid"
)

// ParseScenario decodes a YAML scenario. Unknown keys are rejected.
func ParseScenario(enc []byte) (*Scenario, error) {
	s := &Scenario{}
	if err := yaml.UnmarshalStrict(enc, s); err != nil {
		return nil, errors.Wrap(err, "could not parse scenario")
	}
	if s.Validators <= 0 {
		return nil, errors.New("scenario needs at least one validator")
	}
	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			return nil, errors.Wrapf(err, "step %d", i)
		}
	}
	return s, nil
}

// LoadScenario reads and parses a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	enc, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, errors.Wrap(err, "could not read scenario file")
	}
	return ParseScenario(enc)
}

func (s Step) validate() error {
	set := 0
	if s.Tick != nil {
		set++
	}
	if s.Block != nil {
		set++
		if s.Block.Name == "" {
			return errors.New("block step needs a name")
		}
	}
	if s.Attestation != nil {
		set++
		switch s.Attestation.Outcome {
		case "", outcomeApplied, outcomeDeferred, outcomeInvalid:
		default:
			return errors.Errorf("unknown attestation outcome %q", s.Attestation.Outcome)
		}
	}
	if s.Checks != nil {
		set++
	}
	if set != 1 {
		return errors.Errorf("step must set exactly one of tick, block, attestation or checks, got %d", set)
	}
	return nil
}

// Kind names the step for reports.
func (s Step) Kind() string {
	switch {
	case s.Tick != nil:
		return "tick"
	case s.Block != nil:
		return "block"
	case s.Attestation != nil:
		return "attestation"
	default:
		return "checks"
	}
}
