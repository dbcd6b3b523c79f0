package primitives

// Epoch represents a single epoch.
type Epoch uint64

// ValidatorIndex in eth2.
type ValidatorIndex uint64

// Gwei is the denomination of validator balances.
type Gwei uint64
