package forkchoice

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/ghost/beacon-chain/blockchain"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/store"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/ghost/consensus-types/attestation"
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
	"github.com/prysmaticlabs/ghost/encoding/bytesutil"
	"github.com/prysmaticlabs/ghost/testing/mock"
	"github.com/prysmaticlabs/ghost/testing/util"
	"github.com/prysmaticlabs/go-bitfield"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "scenario")

var (
	// ErrUnexpectedOutcome is returned when a block or attestation step does not end
	// the way the scenario expects.
	ErrUnexpectedOutcome = errors.New("unexpected step outcome")
	// ErrCheckFailed is returned when a checks step does not match the store.
	ErrCheckFailed = errors.New("check failed")
	// ErrUnknownReference is returned for a block name that no earlier step defined.
	ErrUnknownReference = errors.New("unknown block reference")
)

// GenesisName refers to the anchor block in scenarios.
const GenesisName = "genesis"

// Builder drives a blockchain service through scenario steps.
type Builder struct {
	scenario    *Scenario
	service     *blockchain.Service
	store       *store.Store
	transition  *mock.Transitioner
	genesisTime uint64
	roots       map[string][32]byte
}

// StepResult reports how one step ended.
type StepResult struct {
	Index   int
	Kind    string
	Root    [32]byte
	Outcome string
	Err     error
}

// NewBuilder creates the genesis store and service for the scenario. storeOpts are
// passed to the store, for example to attach a persister.
func NewBuilder(ctx context.Context, sc *Scenario, storeOpts ...store.Option) (*Builder, error) {
	if sc == nil {
		return nil, errors.New("nil scenario")
	}
	genesis, genesisState, err := util.Genesis(sc.Validators, sc.GenesisTime)
	if err != nil {
		return nil, errors.Wrap(err, "could not build genesis")
	}
	s, err := store.NewGenesisStore(ctx, genesis, genesisState, storeOpts...)
	if err != nil {
		return nil, err
	}
	transition := &mock.Transitioner{}
	service, err := blockchain.NewService(ctx,
		blockchain.WithStore(s),
		blockchain.WithStateTransitioner(transition),
		blockchain.WithAttestationVerifier(mock.Verifier{}),
	)
	if err != nil {
		return nil, err
	}
	return &Builder{
		scenario:    sc,
		service:     service,
		store:       s,
		transition:  transition,
		genesisTime: sc.GenesisTime,
		roots:       map[string][32]byte{GenesisName: genesis.Root()},
	}, nil
}

// Service returns the service the builder drives.
func (bb *Builder) Service() *blockchain.Service {
	return bb.service
}

// Root returns the root of a named block.
func (bb *Builder) Root(name string) ([32]byte, bool) {
	r, ok := bb.roots[name]
	return r, ok
}

// Close stops the store's persistence.
func (bb *Builder) Close(ctx context.Context) error {
	return bb.store.Close(ctx)
}

// Run executes every step in order and stops at the first failing one.
func (bb *Builder) Run(ctx context.Context) ([]*StepResult, error) {
	results := make([]*StepResult, 0, len(bb.scenario.Steps))
	for i, step := range bb.scenario.Steps {
		res, err := bb.Step(ctx, i, step)
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			return results, errors.Wrapf(err, "step %d (%s)", i, step.Kind())
		}
	}
	return results, nil
}

// Step executes one step. A rejected block or attestation is reported in the result and
// is only an error when the scenario expected another outcome.
func (bb *Builder) Step(ctx context.Context, i int, step Step) (*StepResult, error) {
	res := &StepResult{}
	var err error
	switch {
	case step.Tick != nil:
		err = bb.Tick(ctx, *step.Tick)
		res.Outcome = outcomeApplied
	case step.Block != nil:
		res, err = bb.Block(ctx, step.Block)
	case step.Attestation != nil:
		res, err = bb.Attestation(ctx, step.Attestation)
	case step.Checks != nil:
		err = bb.Check(ctx, step.Checks)
		res.Outcome = "passed"
	}
	if res == nil {
		return nil, err
	}
	res.Index, res.Kind = i, step.Kind()
	if err != nil {
		return res, err
	}
	log.WithFields(logrus.Fields{
		"step":    i,
		"kind":    res.Kind,
		"outcome": res.Outcome,
	}).Debug("Scenario step done")
	return res, nil
}

// Tick sets the store time to the given number of seconds after genesis.
func (bb *Builder) Tick(ctx context.Context, seconds uint64) error {
	return bb.service.ReceiveTick(ctx, bb.genesisTime+seconds)
}

// Block builds and imports a block. A rejection is recorded in the result.
func (bb *Builder) Block(ctx context.Context, b *Block) (*StepResult, error) {
	parent, err := bb.resolve(b.Parent)
	if err != nil {
		return nil, err
	}
	blk := util.NewBeaconBlock(primitives.Slot(b.Slot), parent)
	blk.Blk.BlockBody.Graffiti = [32]byte{b.Graffiti}
	blk.Blk.BlockBody.Invalid = b.Invalid
	if b.Justified != nil {
		if blk.Blk.BlockBody.Justified, err = bb.checkpoint(b.Justified); err != nil {
			return nil, err
		}
	}
	if b.Finalized != nil {
		if blk.Blk.BlockBody.Finalized, err = bb.checkpoint(b.Finalized); err != nil {
			return nil, err
		}
	}
	root := blk.Root()
	bb.roots[b.Name] = root

	wantValid := b.Valid == nil || *b.Valid
	_, rejection := bb.service.ReceiveBlock(ctx, blk)
	res := &StepResult{Root: root, Outcome: outcomeApplied, Err: rejection}
	if rejection != nil {
		if !blockchain.IsInvalidBlock(rejection) {
			return nil, rejection
		}
		res.Outcome = outcomeInvalid
	}
	if wantValid != (rejection == nil) {
		return res, errors.Wrapf(ErrUnexpectedOutcome, "block %s: %s, rejection: %v", b.Name, res.Outcome, rejection)
	}
	return res, nil
}

// Attestation builds and applies an attestation. A rejection is recorded in the result.
func (bb *Builder) Attestation(ctx context.Context, a *Attestation) (*StepResult, error) {
	blockRoot, err := bb.resolve(a.Block)
	if err != nil {
		return nil, err
	}
	target, err := bb.checkpoint(&a.Target)
	if err != nil {
		return nil, err
	}
	bits := bitfield.NewBitlist(uint64(bb.scenario.Validators))
	for _, v := range a.Validators {
		if v >= bits.Len() {
			return nil, errors.Errorf("validator %d out of range", v)
		}
		bits.SetBitAt(v, true)
	}
	att := &attestation.Attestation{
		AggregationBits: bits,
		Data: &attestation.Data{
			Slot:            primitives.Slot(a.Slot),
			BeaconBlockRoot: blockRoot,
			Target:          target,
		},
	}
	if a.BadSig {
		att.Signature = mock.BadSignature
	}

	rejection := bb.service.ReceiveAttestation(ctx, att)
	res := &StepResult{Root: blockRoot, Outcome: outcomeApplied, Err: rejection}
	switch {
	case rejection == nil:
	case blockchain.IsDeferredAttestation(rejection):
		res.Outcome = outcomeDeferred
	case blockchain.IsInvalidAttestation(rejection):
		res.Outcome = outcomeInvalid
	default:
		return nil, rejection
	}
	want := a.Outcome
	if want == "" {
		want = outcomeApplied
	}
	if res.Outcome != want {
		return res, errors.Wrapf(ErrUnexpectedOutcome, "attestation: %s, want %s, rejection: %v", res.Outcome, want, rejection)
	}
	return res, nil
}

// Check compares the service's view with c.
func (bb *Builder) Check(ctx context.Context, c *Check) error {
	if c.Head != "" {
		want, err := bb.resolve(c.Head)
		if err != nil {
			return err
		}
		got, err := bb.service.HeadRoot(ctx)
		if err != nil {
			return err
		}
		if got != want {
			return errors.Wrapf(ErrCheckFailed, "head %s, want %s", bb.name(got), c.Head)
		}
	}
	if c.Time != nil {
		if got := bb.store.Snapshot().Time(); got != bb.genesisTime+*c.Time {
			return errors.Wrapf(ErrCheckFailed, "time %d, want %d", got-bb.genesisTime, *c.Time)
		}
	}
	for _, cc := range []struct {
		name string
		want *Checkpoint
		got  types.Checkpoint
	}{
		{"justified", c.Justified, bb.service.JustifiedCheckpoint()},
		{"best justified", c.BestJustified, bb.service.BestJustifiedCheckpoint()},
		{"finalized", c.Finalized, bb.service.FinalizedCheckpoint()},
	} {
		if cc.want == nil {
			continue
		}
		want, err := bb.checkpoint(cc.want)
		if err != nil {
			return err
		}
		if cc.got != want {
			return errors.Wrapf(ErrCheckFailed, "%s checkpoint %d/%s, want %d/%s",
				cc.name, cc.got.Epoch, bb.name(cc.got.Root), cc.want.Epoch, cc.want.Block)
		}
	}
	return nil
}

func (bb *Builder) checkpoint(c *Checkpoint) (types.Checkpoint, error) {
	root, err := bb.resolve(c.Block)
	if err != nil {
		return types.Checkpoint{}, err
	}
	return types.Checkpoint{Epoch: primitives.Epoch(c.Epoch), Root: root}, nil
}

func (bb *Builder) resolve(ref string) ([32]byte, error) {
	if strings.HasPrefix(ref, "0x") {
		enc, err := hexutil.Decode(ref)
		if err != nil {
			return [32]byte{}, errors.Wrapf(err, "could not decode root %s", ref)
		}
		if len(enc) != 32 {
			return [32]byte{}, errors.Errorf("root %s has %d bytes", ref, len(enc))
		}
		return bytesutil.ToBytes32(enc), nil
	}
	root, ok := bb.roots[ref]
	if !ok {
		return [32]byte{}, errors.Wrapf(ErrUnknownReference, "%q", ref)
	}
	return root, nil
}

// name returns the scenario name of root, or its hex encoding.
func (bb *Builder) name(root [32]byte) string {
	for n, r := range bb.roots {
		if r == root {
			return n
		}
	}
	return hexutil.Encode(root[:])
}
