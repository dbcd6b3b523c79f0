package kv

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/store"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/types"
	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
	"go.opencensus.io/trace"
)

// SaveCommit writes the entries of one store commit and the store's scalar fields in a
// single bolt transaction. Entries are encoded before the transaction opens. A change of
// the finalized checkpoint is appended to the finalized history in the same transaction.
func (s *Store) SaveCommit(ctx context.Context, d *store.CommitDelta) error {
	ctx, span := trace.StartSpan(ctx, "BeaconDB.SaveCommit")
	defer span.End()
	if d == nil {
		return errors.New("nil commit delta")
	}

	blocks := make(map[[32]byte][]byte, len(d.Blocks))
	for root, b := range d.Blocks {
		enc, err := encode(b)
		if err != nil {
			return errors.Wrapf(err, "could not encode block %#x", root)
		}
		blocks[root] = enc
	}
	states := make(map[[32]byte][]byte, len(d.BlockStates))
	for root, st := range d.BlockStates {
		enc, err := encode(st)
		if err != nil {
			return errors.Wrapf(err, "could not encode state of block %#x", root)
		}
		states[root] = enc
	}
	cpStates := make(map[types.Checkpoint][]byte, len(d.CheckpointStates))
	for cp, st := range d.CheckpointStates {
		enc, err := encode(st)
		if err != nil {
			return errors.Wrapf(err, "could not encode checkpoint state %s", cp)
		}
		cpStates[cp] = enc
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(blocksBucket)
		for root, enc := range blocks {
			if err := bkt.Put(root[:], enc); err != nil {
				return err
			}
		}
		bkt = tx.Bucket(stateBucket)
		for root, enc := range states {
			if err := bkt.Put(root[:], enc); err != nil {
				return err
			}
		}
		bkt = tx.Bucket(checkpointStateBucket)
		for cp, enc := range cpStates {
			if err := bkt.Put(checkpointKey(cp), enc); err != nil {
				return err
			}
		}
		bkt = tx.Bucket(latestMessagesBucket)
		for idx, msg := range d.LatestMessages {
			enc, err := encodeLatestMessage(msg)
			if err != nil {
				return err
			}
			if err := bkt.Put(uint64ToBytesBigEndian(uint64(idx)), enc); err != nil {
				return err
			}
		}
		if err := recordFinalizedChange(tx, d.Finalized); err != nil {
			return err
		}
		return saveMetadata(tx, d)
	})
	if err != nil {
		return errors.Wrapf(err, "could not save commit %d", d.Seq)
	}
	log.WithFields(logrus.Fields{
		"seq":    d.Seq,
		"blocks": len(blocks),
		"votes":  len(d.LatestMessages),
	}).Trace("Saved store commit")
	return nil
}

func saveMetadata(tx *bolt.Tx, d *store.CommitDelta) error {
	bkt := tx.Bucket(chainMetadataBucket)
	for _, kv := range []struct {
		key []byte
		val uint64
	}{
		{seqKey, d.Seq},
		{timeKey, d.Time},
		{genesisTimeKey, d.GenesisTime},
	} {
		if err := bkt.Put(kv.key, uint64ToBytesBigEndian(kv.val)); err != nil {
			return err
		}
	}
	for _, kv := range []struct {
		key []byte
		cp  types.Checkpoint
	}{
		{justifiedKey, d.Justified},
		{bestJustifiedKey, d.BestJustified},
		{finalizedKey, d.Finalized},
	} {
		enc, err := encodeCheckpoint(kv.cp)
		if err != nil {
			return err
		}
		if err := bkt.Put(kv.key, enc); err != nil {
			return err
		}
	}
	return nil
}

// CommitSeq returns the sequence number of the last saved commit.
func (s *Store) CommitSeq(ctx context.Context) (uint64, bool, error) {
	_, span := trace.StartSpan(ctx, "BeaconDB.CommitSeq")
	defer span.End()
	var seq uint64
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		enc := tx.Bucket(chainMetadataBucket).Get(seqKey)
		if enc == nil {
			return nil
		}
		seq, found = bytesToUint64BigEndian(enc), true
		return nil
	})
	return seq, found, err
}
