package blockchain

import "github.com/pkg/errors"

var (
	// ErrNilBlock is returned when a nil or incomplete block is imported.
	ErrNilBlock = errors.New("nil block")
	// ErrUnknownParent is returned when the parent's post-state is not in the store.
	ErrUnknownParent = errors.New("unknown parent state")
	// ErrFromFuture is returned when the block's slot is later than the store's current slot.
	ErrFromFuture = errors.New("block is from the future")
	// ErrInvalidAncestry is returned when the block does not descend from the finalized checkpoint.
	ErrInvalidAncestry = errors.New("block is not a descendant of the finalized checkpoint")
	// ErrStateTransition is returned when the state transition rejects the block.
	ErrStateTransition = errors.New("state transition failed")

	// ErrNilAttestation is returned when a nil attestation or attestation data is imported.
	ErrNilAttestation = errors.New("nil attestation")
	// ErrAttestationTargetEpoch is returned when the target epoch is neither the current nor the previous epoch.
	ErrAttestationTargetEpoch = errors.New("attestation target epoch is not the current or previous epoch")
	// ErrAttestationSlotMismatch is returned when the target epoch does not contain the attestation slot.
	ErrAttestationSlotMismatch = errors.New("attestation target epoch does not match attestation slot")
	// ErrAttestationNotFromPast is returned when the attestation slot is not yet in the past.
	ErrAttestationNotFromPast = errors.New("attestation is not from the past yet")
	// ErrUnknownBlock is returned when the target or attested block is not in the store.
	ErrUnknownBlock = errors.New("attested block is unknown")
	// ErrAttestationBlockFromFuture is returned when the attested block is later than the attestation slot.
	ErrAttestationBlockFromFuture = errors.New("attested block is later than attestation slot")
	// ErrInvalidAttestation is returned when committee or signature verification fails.
	ErrInvalidAttestation = errors.New("attestation failed verification")

	errCheckpointBaseUnknown = errors.New("checkpoint block state is unknown")
	errNilStore              = errors.New("nil fork choice store")
	errNilStateTransitioner  = errors.New("nil state transitioner")
	errNilAttVerifier        = errors.New("nil attestation verifier")
)

// An invalid block is the block that fails import based on the core protocol rules. The
// block shall not be retried: it is from an unknown chain, outside the finalized chain,
// ahead of wall time, or rejected by the state transition.
type invalidBlock struct {
	error
	root [32]byte
}

type invalidBlockError interface {
	Error() string
	BlockRoot() [32]byte
}

// BlockRoot returns the invalid block root.
func (e invalidBlock) BlockRoot() [32]byte {
	return e.root
}

// Unwrap returns the cause, so errors.Is matches the sentinel errors.
func (e invalidBlock) Unwrap() error {
	return e.error
}

// IsInvalidBlock returns true if the error has `invalidBlock`.
func IsInvalidBlock(e error) bool {
	var ib invalidBlockError
	return errors.As(e, &ib)
}

// InvalidBlockRoot returns the invalid block root. If the error
// doesn't have an invalid blockroot. [32]byte{} is returned.
func InvalidBlockRoot(e error) [32]byte {
	var ib invalidBlockError
	if !errors.As(e, &ib) {
		return [32]byte{}
	}
	return ib.BlockRoot()
}

// A deferred attestation cannot be applied yet. The caller is expected to submit it
// again once the missing block arrives or the slot has passed.
type deferredAttestation struct {
	error
}

func (e deferredAttestation) Unwrap() error {
	return e.error
}

func (e deferredAttestation) deferred() {}

// An invalid attestation is permanently rejected.
type invalidAttestation struct {
	error
}

func (e invalidAttestation) Unwrap() error {
	return e.error
}

func (e invalidAttestation) invalid() {}

// IsDeferredAttestation returns true if the attestation may succeed when retried later.
func IsDeferredAttestation(e error) bool {
	var d interface{ deferred() }
	return errors.As(e, &d)
}

// IsInvalidAttestation returns true if the attestation must be dropped.
func IsInvalidAttestation(e error) bool {
	var i interface{ invalid() }
	return errors.As(e, &i)
}

func rejectionReason(err error) string {
	for _, r := range []struct {
		err    error
		reason string
	}{
		{ErrNilBlock, "nil_block"},
		{ErrUnknownParent, "unknown_parent"},
		{ErrFromFuture, "from_future"},
		{ErrInvalidAncestry, "invalid_ancestry"},
		{ErrStateTransition, "state_transition"},
	} {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return "other"
}
