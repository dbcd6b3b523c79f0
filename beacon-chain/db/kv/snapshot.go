package kv

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/store"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/ghost/beacon-chain/state"
	"github.com/prysmaticlabs/ghost/consensus-types/interfaces"
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
	"github.com/prysmaticlabs/ghost/encoding/bytesutil"
	bolt "go.etcd.io/bbolt"
	"go.opencensus.io/trace"
)

// ErrNoSnapshot is returned by LoadSnapshot when nothing was ever committed.
var ErrNoSnapshot = errors.New("no fork choice store in database")

// Decoder builds blocks and states of the concrete types kept in the database from
// their SSZ encoding.
type Decoder interface {
	DecodeBlock(enc []byte) (interfaces.ReadOnlySignedBeaconBlock, error)
	DecodeState(enc []byte) (state.ReadOnlyBeaconState, error)
}

// LoadSnapshot reads back everything saved by SaveCommit as a full export that
// store.NewFromSnapshot accepts.
func (s *Store) LoadSnapshot(ctx context.Context, dec Decoder) (*store.CommitDelta, error) {
	ctx, span := trace.StartSpan(ctx, "BeaconDB.LoadSnapshot")
	defer span.End()

	full := &store.CommitDelta{
		Blocks:           make(map[[32]byte]interfaces.ReadOnlySignedBeaconBlock),
		BlockStates:      make(map[[32]byte]state.ReadOnlyBeaconState),
		CheckpointStates: make(map[types.Checkpoint]state.ReadOnlyBeaconState),
		LatestMessages:   make(map[primitives.ValidatorIndex]types.LatestMessage),
	}
	err := s.db.View(func(tx *bolt.Tx) error {
		if err := loadMetadata(tx, full); err != nil {
			return err
		}
		if err := tx.Bucket(blocksBucket).ForEach(func(k, v []byte) error {
			b, err := decodeBlock(dec, v)
			if err != nil {
				return errors.Wrapf(err, "could not decode block %#x", k)
			}
			full.Blocks[bytesutil.ToBytes32(k)] = b
			return nil
		}); err != nil {
			return err
		}
		if err := tx.Bucket(stateBucket).ForEach(func(k, v []byte) error {
			st, err := decodeState(dec, v)
			if err != nil {
				return errors.Wrapf(err, "could not decode state %#x", k)
			}
			full.BlockStates[bytesutil.ToBytes32(k)] = st
			return nil
		}); err != nil {
			return err
		}
		if err := tx.Bucket(checkpointStateBucket).ForEach(func(k, v []byte) error {
			cp, err := checkpointFromKey(k)
			if err != nil {
				return err
			}
			st, err := decodeState(dec, v)
			if err != nil {
				return errors.Wrapf(err, "could not decode checkpoint state %s", cp)
			}
			full.CheckpointStates[cp] = st
			return nil
		}); err != nil {
			return err
		}
		return tx.Bucket(latestMessagesBucket).ForEach(func(k, v []byte) error {
			msg, err := decodeLatestMessage(v)
			if err != nil {
				return err
			}
			full.LatestMessages[primitives.ValidatorIndex(bytesToUint64BigEndian(k))] = msg
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return full, nil
}

func loadMetadata(tx *bolt.Tx, full *store.CommitDelta) error {
	bkt := tx.Bucket(chainMetadataBucket)
	enc := bkt.Get(seqKey)
	if enc == nil {
		return ErrNoSnapshot
	}
	full.Seq = bytesToUint64BigEndian(enc)
	full.Time = bytesToUint64BigEndian(bkt.Get(timeKey))
	full.GenesisTime = bytesToUint64BigEndian(bkt.Get(genesisTimeKey))
	for _, kv := range []struct {
		key []byte
		dst *types.Checkpoint
	}{
		{justifiedKey, &full.Justified},
		{bestJustifiedKey, &full.BestJustified},
		{finalizedKey, &full.Finalized},
	} {
		cp, err := decodeCheckpoint(bkt.Get(kv.key))
		if err != nil {
			return errors.Wrapf(err, "could not decode %s", kv.key)
		}
		*kv.dst = cp
	}
	return nil
}
