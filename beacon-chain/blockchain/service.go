// Package blockchain defines the life-cycle of fork choice: importing blocks, applying
// attestations and wall clock ticks to the store, and answering head and checkpoint
// queries from the last committed snapshot.
package blockchain

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/ghost/async"
	"github.com/prysmaticlabs/ghost/beacon-chain/core/transition"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/store"
	"github.com/prysmaticlabs/ghost/config/params"
	"golang.org/x/sync/singleflight"
)

// Service represents a service that handles the internal
// logic of managing the full PoS beacon chain.
type Service struct {
	cfg                  *config
	ctx                  context.Context
	cancel               context.CancelFunc
	checkpointStateGroup singleflight.Group
	headCache            *lru.Cache[uint64, [32]byte]
	tickerDone           <-chan struct{}
}

// config options for the service.
type config struct {
	Store               *store.Store
	StateTransitioner   transition.StateTransitioner
	AttestationVerifier transition.AttestationVerifier
	Clock               func() time.Time
	TickInterval        time.Duration
}

// NewService instantiates a new block service instance that will
// be registered into a running beacon node.
func NewService(ctx context.Context, opts ...Option) (*Service, error) {
	ctx, cancel := context.WithCancel(ctx)
	srv := &Service{
		ctx:    ctx,
		cancel: cancel,
		cfg: &config{
			TickInterval: time.Duration(params.BeaconConfig().TickIntervalMillis) * time.Millisecond,
		},
	}
	for _, opt := range opts {
		if err := opt(srv); err != nil {
			cancel()
			return nil, err
		}
	}
	switch {
	case srv.cfg.Store == nil:
		cancel()
		return nil, errNilStore
	case srv.cfg.StateTransitioner == nil:
		cancel()
		return nil, errNilStateTransitioner
	case srv.cfg.AttestationVerifier == nil:
		cancel()
		return nil, errNilAttVerifier
	}
	headCache, err := lru.New[uint64, [32]byte](params.BeaconConfig().HeadCacheSize)
	if err != nil {
		cancel()
		return nil, errors.Wrap(err, "could not create head cache")
	}
	srv.headCache = headCache
	reportCheckpoints(srv.cfg.Store.Snapshot())
	return srv, nil
}

// Start ticks the wall clock into the store every tick interval when a clock is configured.
func (s *Service) Start() {
	if s.cfg.Clock == nil {
		log.Debug("No clock configured, store time only advances through ReceiveTick")
		return
	}
	s.tickNow()
	s.tickerDone = async.RunEvery(s.ctx, s.cfg.TickInterval, s.tickNow)
}

func (s *Service) tickNow() {
	now := s.cfg.Clock()
	if now.Unix() < 0 {
		return
	}
	if err := s.ReceiveTick(s.ctx, uint64(now.Unix())); err != nil {
		log.WithError(err).Error("Could not tick fork choice store")
	}
}

// Stop the blockchain service's main event loop and associated goroutines.
func (s *Service) Stop() error {
	s.cancel()
	if s.tickerDone != nil {
		<-s.tickerDone
	}
	return nil
}

// Status always returns nil unless there is an error condition that causes
// this service to be unhealthy.
func (s *Service) Status() error {
	if s.cfg.Store.Snapshot() == nil {
		return errNilStore
	}
	return nil
}

// Store returns the fork choice store the service operates on.
func (s *Service) Store() *store.Store {
	return s.cfg.Store
}
