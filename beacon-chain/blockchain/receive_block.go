package blockchain

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/ghost/consensus-types/interfaces"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
)

// ReceiveBlock imports a block in its own transaction and commits it on success.
// A rejected block leaves the store untouched.
func (s *Service) ReceiveBlock(ctx context.Context, signed interfaces.ReadOnlySignedBeaconBlock) (*BlockImportResult, error) {
	ctx, span := trace.StartSpan(ctx, "blockChain.ReceiveBlock")
	defer span.End()

	tx := s.cfg.Store.StartTransaction()
	defer tx.Discard()

	res, err := s.OnBlock(ctx, tx, signed)
	if err != nil {
		rejectedBlocksTotal.WithLabelValues(rejectionReason(err)).Inc()
		fields := logrus.Fields{"reason": rejectionReason(err)}
		if IsInvalidBlock(err) {
			fields["root"] = rootString(InvalidBlockRoot(err))
		}
		log.WithError(err).WithFields(fields).Debug("Rejected block")
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "could not commit block import")
	}
	processedBlocksTotal.Inc()
	snap := s.cfg.Store.Snapshot()
	reportCheckpoints(snap)
	logBlockImported(res.Root, signed, snap)
	return res, nil
}
