package blockchain

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/ghost/consensus-types/attestation"
	"go.opencensus.io/trace"
)

// ReceiveAttestation applies an attestation in its own transaction. Deferred outcomes
// are reported with an error for which IsDeferredAttestation holds.
func (s *Service) ReceiveAttestation(ctx context.Context, att *attestation.Attestation) error {
	ctx, span := trace.StartSpan(ctx, "blockChain.ReceiveAttestation")
	defer span.End()

	tx := s.cfg.Store.StartTransaction()
	defer tx.Discard()

	if _, err := s.OnAttestation(ctx, tx, att); err != nil {
		switch {
		case IsDeferredAttestation(err):
			attestationsTotal.WithLabelValues("deferred").Inc()
		case IsInvalidAttestation(err):
			attestationsTotal.WithLabelValues("invalid").Inc()
		default:
			attestationsTotal.WithLabelValues("error").Inc()
		}
		log.WithError(err).Debug("Could not apply attestation")
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "could not commit attestation")
	}
	attestationsTotal.WithLabelValues("applied").Inc()
	return nil
}

// ReceiveTick advances the store clock to time, in seconds since the unix epoch.
func (s *Service) ReceiveTick(ctx context.Context, time uint64) error {
	tx := s.cfg.Store.StartTransaction()
	defer tx.Discard()
	s.OnTick(ctx, tx, time)
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "could not commit tick")
	}
	reportCheckpoints(s.cfg.Store.Snapshot())
	return nil
}
