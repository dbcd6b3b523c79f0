package kv

import (
	"bytes"
	"context"

	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/types"
	bolt "go.etcd.io/bbolt"
	"go.opencensus.io/trace"
)

// SaveFinalizedCheckpoint records cp in the finalized history, keyed by epoch.
func (s *Store) SaveFinalizedCheckpoint(ctx context.Context, cp types.Checkpoint) error {
	_, span := trace.StartSpan(ctx, "BeaconDB.SaveFinalizedCheckpoint")
	defer span.End()
	return s.db.Update(func(tx *bolt.Tx) error {
		return putFinalizedCheckpoint(tx, cp)
	})
}

// FinalizedCheckpoints returns the finalized history in epoch order.
func (s *Store) FinalizedCheckpoints(ctx context.Context) ([]types.Checkpoint, error) {
	_, span := trace.StartSpan(ctx, "BeaconDB.FinalizedCheckpoints")
	defer span.End()
	var cps []types.Checkpoint
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(finalizedCheckpointsBucket).ForEach(func(_, v []byte) error {
			cp, err := decodeCheckpoint(v)
			if err != nil {
				return err
			}
			cps = append(cps, cp)
			return nil
		})
	})
	return cps, err
}

func putFinalizedCheckpoint(tx *bolt.Tx, cp types.Checkpoint) error {
	enc, err := encodeCheckpoint(cp)
	if err != nil {
		return err
	}
	return tx.Bucket(finalizedCheckpointsBucket).Put(uint64ToBytesBigEndian(uint64(cp.Epoch)), enc)
}

// recordFinalizedChange appends cp to the finalized history when it differs from the
// finalized checkpoint of the previously saved commit. The anchor commit has no
// predecessor and is not recorded.
func recordFinalizedChange(tx *bolt.Tx, cp types.Checkpoint) error {
	prev := tx.Bucket(chainMetadataBucket).Get(finalizedKey)
	if prev == nil {
		return nil
	}
	enc, err := encodeCheckpoint(cp)
	if err != nil {
		return err
	}
	if bytes.Equal(prev, enc) {
		return nil
	}
	return putFinalizedCheckpoint(tx, cp)
}
