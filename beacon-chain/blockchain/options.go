package blockchain

import (
	"time"

	"github.com/prysmaticlabs/ghost/beacon-chain/core/transition"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/store"
)

// Option configures the blockchain service.
type Option func(s *Service) error

// WithStore sets the fork choice store the service reads and writes.
func WithStore(st *store.Store) Option {
	return func(s *Service) error {
		s.cfg.Store = st
		return nil
	}
}

// WithStateTransitioner sets the consensus state transition.
func WithStateTransitioner(t transition.StateTransitioner) Option {
	return func(s *Service) error {
		s.cfg.StateTransitioner = t
		return nil
	}
}

// WithAttestationVerifier sets the committee and signature verifier.
func WithAttestationVerifier(v transition.AttestationVerifier) Option {
	return func(s *Service) error {
		s.cfg.AttestationVerifier = v
		return nil
	}
}

// WithClock enables wall clock ticking from Start. now is read at every tick.
func WithClock(now func() time.Time) Option {
	return func(s *Service) error {
		s.cfg.Clock = now
		return nil
	}
}

// WithTickInterval overrides how often the wall clock is ticked into the store.
func WithTickInterval(d time.Duration) Option {
	return func(s *Service) error {
		s.cfg.TickInterval = d
		return nil
	}
}
