package store

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/ghost/beacon-chain/state"
	"github.com/prysmaticlabs/ghost/consensus-types/interfaces"
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
)

// CommitDelta is the set of entries written by one commit, together with the store's
// scalar fields after that commit. A full export uses the same shape.
type CommitDelta struct {
	Seq           uint64
	Time          uint64
	GenesisTime   uint64
	Justified     types.Checkpoint
	BestJustified types.Checkpoint
	Finalized     types.Checkpoint

	Blocks           map[[32]byte]interfaces.ReadOnlySignedBeaconBlock
	BlockStates      map[[32]byte]state.ReadOnlyBeaconState
	CheckpointStates map[types.Checkpoint]state.ReadOnlyBeaconState
	LatestMessages   map[primitives.ValidatorIndex]types.LatestMessage
}

// Persister durably records commits. Deltas arrive in commit order from a single goroutine.
type Persister interface {
	SaveCommit(ctx context.Context, delta *CommitDelta) error
}

type persistRunner struct {
	persister Persister
	queue     chan *CommitDelta
	onError   func(seq uint64, err error)
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	// failed is the first persist error. It is only written by run and read after done.
	failed    error
	failedSeq uint64
}

func newPersistRunner(p Persister, size int, onError func(uint64, error)) *persistRunner {
	ctx, cancel := context.WithCancel(context.Background())
	r := &persistRunner{
		persister: p,
		queue:     make(chan *CommitDelta, size),
		onError:   onError,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go r.run()
	return r
}

// enqueue hands a delta to the persistence goroutine. It only blocks when the queue
// is full, which happens after the new snapshot is already visible.
func (r *persistRunner) enqueue(d *CommitDelta) {
	r.queue <- d
	persistQueueDepth.Set(float64(len(r.queue)))
}

// run saves deltas in order. Deltas only make sense on top of all earlier ones, so after
// the first failure every later delta is dropped and the persisted commit sequence stays
// at the last complete commit.
func (r *persistRunner) run() {
	defer close(r.done)
	for d := range r.queue {
		persistQueueDepth.Set(float64(len(r.queue)))
		if r.failed != nil {
			persistFailuresTotal.Inc()
			r.report(d.Seq, errors.Wrapf(ErrPersistenceHalted, "commit %d failed", r.failedSeq))
			continue
		}
		if err := r.persister.SaveCommit(r.ctx, d); err != nil {
			persistFailuresTotal.Inc()
			log.WithError(err).WithField("seq", d.Seq).Error("Could not persist store commit, halting persistence")
			r.failed, r.failedSeq = err, d.Seq
			r.report(d.Seq, err)
			continue
		}
		persistedCommitsTotal.Inc()
	}
}

func (r *persistRunner) report(seq uint64, err error) {
	if r.onError != nil {
		r.onError(seq, err)
	}
}

// stop drains the queue and returns the first persist error, if any.
func (r *persistRunner) stop(ctx context.Context) error {
	close(r.queue)
	select {
	case <-r.done:
		r.cancel()
		if r.failed != nil {
			return errors.Wrapf(r.failed, "could not persist commit %d", r.failedSeq)
		}
		return nil
	case <-ctx.Done():
		r.cancel()
		return ctx.Err()
	}
}
