// Package store holds the authoritative fork choice store. The committed view is an
// immutable Snapshot published through an atomic pointer, so readers never wait on
// writers. All mutation goes through a single Transaction at a time.
package store

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/ghost/beacon-chain/state"
	"github.com/prysmaticlabs/ghost/config/params"
	"github.com/prysmaticlabs/ghost/container/layered"
	"github.com/prysmaticlabs/ghost/consensus-types/interfaces"
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
	"github.com/prysmaticlabs/ghost/time/slots"
	"github.com/sirupsen/logrus"
)

// FinalizedCheckpointListener is notified after a commit that advanced the finalized
// checkpoint. Listeners run on the committing goroutine while the write lock is held
// and must not start a transaction.
type FinalizedCheckpointListener interface {
	FinalizedCheckpointChanged(ctx context.Context, previous, current types.Checkpoint)
}

// Store is the fork choice store.
type Store struct {
	current   atomic.Pointer[Snapshot]
	writeLock sync.Mutex
	listeners []FinalizedCheckpointListener
	persist   *persistRunner

	persister      Persister
	persistQueue   int
	persistOnError func(seq uint64, err error)
}

// Option configures a Store.
type Option func(s *Store) error

// WithFinalizedCheckpointListener registers a listener for finalized checkpoint changes.
func WithFinalizedCheckpointListener(l FinalizedCheckpointListener) Option {
	return func(s *Store) error {
		if l == nil {
			return errors.New("nil finalized checkpoint listener")
		}
		s.listeners = append(s.listeners, l)
		return nil
	}
}

// WithPersister streams every commit to p in the background. queueSize bounds the
// number of pending commits; zero uses the configured default.
func WithPersister(p Persister, queueSize int) Option {
	return func(s *Store) error {
		if p == nil {
			return errors.New("nil persister")
		}
		if queueSize < 0 {
			return errors.Errorf("negative persist queue size %d", queueSize)
		}
		s.persister = p
		s.persistQueue = queueSize
		return nil
	}
}

// WithPersistErrorHandler is called from the persistence goroutine for every commit that
// could not be persisted, including the commits dropped after the first failure.
func WithPersistErrorHandler(f func(seq uint64, err error)) Option {
	return func(s *Store) error {
		s.persistOnError = f
		return nil
	}
}

// NewGenesisStore builds a store anchored at the given block and its post-state.
//
// Spec pseudocode definition:
//
//	def get_forkchoice_store(anchor_state: BeaconState, anchor_block: BeaconBlock) -> Store:
//	  assert anchor_block.state_root == hash_tree_root(anchor_state)
//	  anchor_root = hash_tree_root(anchor_block)
//	  anchor_epoch = get_current_epoch(anchor_state)
//	  justified_checkpoint = Checkpoint(epoch=anchor_epoch, root=anchor_root)
//	  finalized_checkpoint = Checkpoint(epoch=anchor_epoch, root=anchor_root)
//	  return Store(
//	      time=uint64(anchor_state.genesis_time + SECONDS_PER_SLOT * anchor_state.slot),
//	      genesis_time=anchor_state.genesis_time,
//	      justified_checkpoint=justified_checkpoint,
//	      finalized_checkpoint=finalized_checkpoint,
//	      best_justified_checkpoint=justified_checkpoint,
//	      blocks={anchor_root: copy(anchor_block)},
//	      block_states={anchor_root: copy(anchor_state)},
//	      checkpoint_states={justified_checkpoint: copy(anchor_state)},
//	  )
func NewGenesisStore(ctx context.Context, anchor interfaces.ReadOnlySignedBeaconBlock, anchorState state.ReadOnlyBeaconState, opts ...Option) (*Store, error) {
	if err := interfaces.BeaconBlockIsNil(anchor); err != nil {
		return nil, errors.Wrap(ErrNilAnchor, err.Error())
	}
	if anchorState == nil || anchorState.IsNil() {
		return nil, errors.Wrap(ErrNilAnchor, "nil anchor state")
	}
	stateRoot, err := anchorState.HashTreeRoot(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "could not hash anchor state")
	}
	if anchor.Block().StateRoot() != stateRoot {
		return nil, errors.Wrapf(ErrAnchorStateRootMismatch, "block commits to %#x, state root is %#x", anchor.Block().StateRoot(), stateRoot)
	}
	root, err := anchor.Block().HashTreeRoot()
	if err != nil {
		return nil, errors.Wrap(err, "could not hash anchor block")
	}
	cp := types.Checkpoint{Epoch: slots.ToEpoch(anchorState.Slot()), Root: root}
	startTime, err := slots.StartTime(anchorState.GenesisTime(), anchorState.Slot())
	if err != nil {
		return nil, err
	}

	d := &CommitDelta{
		Time:             startTime,
		GenesisTime:      anchorState.GenesisTime(),
		Justified:        cp,
		BestJustified:    cp,
		Finalized:        cp,
		Blocks:           map[[32]byte]interfaces.ReadOnlySignedBeaconBlock{root: anchor},
		BlockStates:      map[[32]byte]state.ReadOnlyBeaconState{root: anchorState},
		CheckpointStates: map[types.Checkpoint]state.ReadOnlyBeaconState{cp: anchorState},
		LatestMessages:   map[primitives.ValidatorIndex]types.LatestMessage{},
	}
	s, err := newStore(d, opts...)
	if err != nil {
		return nil, err
	}
	if s.persist != nil {
		s.persist.enqueue(d)
	}
	log.WithFields(logrus.Fields{
		"root": cp.String(),
		"slot": anchorState.Slot(),
		"time": startTime,
	}).Info("Initialized fork choice store from anchor")
	return s, nil
}

// NewFromSnapshot rebuilds a store from a full export, such as one loaded from disk.
// The restored store is not re-persisted.
func NewFromSnapshot(full *CommitDelta, opts ...Option) (*Store, error) {
	if full == nil {
		return nil, errors.New("nil snapshot")
	}
	for _, cp := range []types.Checkpoint{full.Justified, full.BestJustified, full.Finalized} {
		if _, ok := full.Blocks[cp.Root]; !ok {
			return nil, errors.Wrapf(ErrIncompleteSnapshot, "missing checkpoint block %#x", cp.Root)
		}
	}
	if _, ok := full.CheckpointStates[full.Justified]; !ok {
		if _, ok := full.BlockStates[full.Justified.Root]; !ok {
			return nil, errors.Wrap(ErrIncompleteSnapshot, "missing justified checkpoint base state")
		}
	}
	anchors := 0
	for root, b := range full.Blocks {
		if _, ok := full.BlockStates[root]; !ok {
			return nil, errors.Wrapf(ErrIncompleteSnapshot, "missing state for block %#x at slot %d", root, b.Block().Slot())
		}
		if _, ok := full.Blocks[b.Block().ParentRoot()]; !ok {
			anchors++
		}
	}
	// Only the anchor may lack its parent.
	if anchors != 1 {
		return nil, errors.Wrapf(ErrIncompleteSnapshot, "%d blocks without a known parent", anchors)
	}
	return newStore(full, opts...)
}

func newStore(d *CommitDelta, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	children := make(map[[32]byte][][32]byte)
	for root, b := range d.Blocks {
		parent := b.Block().ParentRoot()
		if _, ok := d.Blocks[parent]; !ok {
			// The anchor's parent is never part of the store.
			continue
		}
		children[parent] = append(children[parent], root)
	}
	s.current.Store(&Snapshot{
		seq:              d.Seq,
		time:             d.Time,
		genesisTime:      d.GenesisTime,
		justified:        d.Justified,
		bestJustified:    d.BestJustified,
		finalized:        d.Finalized,
		blocks:           layered.FromMap(d.Blocks),
		blockStates:      layered.FromMap(d.BlockStates),
		checkpointStates: layered.FromMap(d.CheckpointStates),
		latestMessages:   layered.FromMap(d.LatestMessages),
		children:         layered.FromMap(children),
	})
	if s.persister != nil {
		size := s.persistQueue
		if size == 0 {
			size = params.BeaconConfig().PersistQueueSize
		}
		s.persist = newPersistRunner(s.persister, size, s.persistOnError)
	}
	return s, nil
}

// Snapshot returns the last committed snapshot. It never blocks.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// StartTransaction blocks until no other transaction is open, then returns a
// transaction over the latest committed snapshot. The caller must Commit or Discard it.
func (s *Store) StartTransaction() *Transaction {
	s.writeLock.Lock()
	return newTransaction(s, s.current.Load())
}

// Close stops accepting commits for persistence and waits until every queued commit
// was handed to the persister, or ctx is done. It returns the first persist failure.
func (s *Store) Close(ctx context.Context) error {
	s.writeLock.Lock()
	r := s.persist
	s.persist = nil
	s.writeLock.Unlock()
	if r == nil {
		return nil
	}
	return r.stop(ctx)
}
