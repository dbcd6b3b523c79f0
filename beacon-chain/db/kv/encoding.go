package kv

import (
	"encoding/binary"
	"reflect"

	"github.com/ethereum/go-ethereum/common/hexutil"
	ssz "github.com/ferranbt/fastssz"
	"github.com/golang/snappy"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/ghost/beacon-chain/state"
	"github.com/prysmaticlabs/ghost/consensus-types/interfaces"
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
	"github.com/prysmaticlabs/ghost/encoding/bytesutil"
	"go.uber.org/multierr"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNotSSZ is returned when a block or state cannot be encoded for storage.
var ErrNotSSZ = errors.New("value does not implement ssz marshaling")

func decodeBlock(dec Decoder, data []byte) (interfaces.ReadOnlySignedBeaconBlock, error) {
	data, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, err
	}
	return dec.DecodeBlock(data)
}

func decodeState(dec Decoder, data []byte) (state.ReadOnlyBeaconState, error) {
	data, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, err
	}
	return dec.DecodeState(data)
}

func encode(v interface{}) ([]byte, error) {
	if v == nil || (reflect.ValueOf(v).Kind() == reflect.Ptr && reflect.ValueOf(v).IsNil()) {
		return nil, errors.New("cannot encode nil value")
	}
	m, ok := v.(ssz.Marshaler)
	if !ok {
		return nil, errors.Wrapf(ErrNotSSZ, "type %T", v)
	}
	enc, err := m.MarshalSSZ()
	if err != nil {
		return nil, err
	}
	return snappy.Encode(nil, enc), nil
}

type checkpointRecord struct {
	Epoch primitives.Epoch `json:"epoch"`
	Root  hexutil.Bytes    `json:"root"`
}

func encodeCheckpoint(cp types.Checkpoint) ([]byte, error) {
	return json.Marshal(&checkpointRecord{Epoch: cp.Epoch, Root: cp.Root[:]})
}

func decodeCheckpoint(enc []byte) (types.Checkpoint, error) {
	var rec checkpointRecord
	if err := json.Unmarshal(enc, &rec); err != nil {
		return types.Checkpoint{}, err
	}
	if len(rec.Root) != 32 {
		return types.Checkpoint{}, errors.Errorf("checkpoint root has %d bytes", len(rec.Root))
	}
	return types.Checkpoint{Epoch: rec.Epoch, Root: bytesutil.ToBytes32(rec.Root)}, nil
}

func encodeLatestMessage(msg types.LatestMessage) ([]byte, error) {
	return json.Marshal(&checkpointRecord{Epoch: msg.Epoch, Root: msg.Root[:]})
}

func decodeLatestMessage(enc []byte) (types.LatestMessage, error) {
	cp, err := decodeCheckpoint(enc)
	if err != nil {
		return types.LatestMessage{}, err
	}
	return types.LatestMessage{Epoch: cp.Epoch, Root: cp.Root}, nil
}

func uint64ToBytesBigEndian(i uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, i)
	return buf
}

func bytesToUint64BigEndian(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func checkpointKey(cp types.Checkpoint) []byte {
	return append(uint64ToBytesBigEndian(uint64(cp.Epoch)), cp.Root[:]...)
}

func checkpointFromKey(k []byte) (types.Checkpoint, error) {
	if len(k) != 40 {
		return types.Checkpoint{}, errors.Errorf("checkpoint key has %d bytes", len(k))
	}
	return types.Checkpoint{
		Epoch: primitives.Epoch(bytesToUint64BigEndian(k[:8])),
		Root:  bytesutil.ToBytes32(k[8:]),
	}, nil
}

func multiErr(errs ...error) error {
	return multierr.Combine(errs...)
}
