package store

import "github.com/pkg/errors"

var (
	// ErrNilAnchor is returned when the anchor block or state is missing.
	ErrNilAnchor = errors.New("nil anchor block or state")
	// ErrAnchorStateRootMismatch is returned when the anchor block does not commit to the anchor state.
	ErrAnchorStateRootMismatch = errors.New("anchor block state root does not match anchor state")
	// ErrIncompleteSnapshot is returned when a restored snapshot lacks entries the store needs.
	ErrIncompleteSnapshot = errors.New("incomplete store snapshot")
	// ErrPersistenceHalted is reported for commits dropped after an earlier commit could not
	// be persisted.
	ErrPersistenceHalted = errors.New("persistence halted after a failed commit")
	// ErrTransactionDone is returned when committing a transaction twice or after discard.
	ErrTransactionDone = errors.New("transaction already committed or discarded")
)
