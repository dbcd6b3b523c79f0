package store

import (
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/ghost/beacon-chain/state"
	"github.com/prysmaticlabs/ghost/container/layered"
	"github.com/prysmaticlabs/ghost/consensus-types/interfaces"
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
	"github.com/prysmaticlabs/ghost/time/slots"
)

// ReadOnlyStore is the read side shared by committed snapshots and open transactions.
// Lookups report absence with a false second value; a missing entry is not an error.
type ReadOnlyStore interface {
	Time() uint64
	GenesisTime() uint64
	CurrentSlot() primitives.Slot
	JustifiedCheckpoint() types.Checkpoint
	BestJustifiedCheckpoint() types.Checkpoint
	FinalizedCheckpoint() types.Checkpoint
	Block(root [32]byte) (interfaces.ReadOnlySignedBeaconBlock, bool)
	HasBlock(root [32]byte) bool
	BlockState(root [32]byte) (state.ReadOnlyBeaconState, bool)
	CheckpointState(cp types.Checkpoint) (state.ReadOnlyBeaconState, bool)
	LatestMessage(idx primitives.ValidatorIndex) (types.LatestMessage, bool)
	RangeLatestMessages(f func(idx primitives.ValidatorIndex, msg types.LatestMessage) bool)
	Children(root [32]byte) [][32]byte
}

var (
	_ = ReadOnlyStore(&Snapshot{})
	_ = ReadOnlyStore(&Transaction{})
)

// Snapshot is an immutable committed version of the store.
type Snapshot struct {
	seq           uint64
	time          uint64
	genesisTime   uint64
	justified     types.Checkpoint
	bestJustified types.Checkpoint
	finalized     types.Checkpoint

	blocks           *layered.Map[[32]byte, interfaces.ReadOnlySignedBeaconBlock]
	blockStates      *layered.Map[[32]byte, state.ReadOnlyBeaconState]
	checkpointStates *layered.Map[types.Checkpoint, state.ReadOnlyBeaconState]
	latestMessages   *layered.Map[primitives.ValidatorIndex, types.LatestMessage]
	children         *layered.Map[[32]byte, [][32]byte]
}

// Seq is the commit sequence number of the snapshot. It increases by one with every
// commit that changed anything.
func (s *Snapshot) Seq() uint64 {
	return s.seq
}

// Time of the snapshot, in seconds since the unix epoch.
func (s *Snapshot) Time() uint64 {
	return s.time
}

// GenesisTime of the chain.
func (s *Snapshot) GenesisTime() uint64 {
	return s.genesisTime
}

// CurrentSlot derived from the store's time.
func (s *Snapshot) CurrentSlot() primitives.Slot {
	return slots.AtTime(s.genesisTime, s.time)
}

// JustifiedCheckpoint of the snapshot.
func (s *Snapshot) JustifiedCheckpoint() types.Checkpoint {
	return s.justified
}

// BestJustifiedCheckpoint of the snapshot.
func (s *Snapshot) BestJustifiedCheckpoint() types.Checkpoint {
	return s.bestJustified
}

// FinalizedCheckpoint of the snapshot.
func (s *Snapshot) FinalizedCheckpoint() types.Checkpoint {
	return s.finalized
}

// Block by root.
func (s *Snapshot) Block(root [32]byte) (interfaces.ReadOnlySignedBeaconBlock, bool) {
	return s.blocks.Get(root)
}

// HasBlock reports whether the block is known.
func (s *Snapshot) HasBlock(root [32]byte) bool {
	return s.blocks.Has(root)
}

// BlockState returns the post-state of the block with root.
func (s *Snapshot) BlockState(root [32]byte) (state.ReadOnlyBeaconState, bool) {
	return s.blockStates.Get(root)
}

// CheckpointState returns the state advanced to the checkpoint's epoch start.
func (s *Snapshot) CheckpointState(cp types.Checkpoint) (state.ReadOnlyBeaconState, bool) {
	return s.checkpointStates.Get(cp)
}

// LatestMessage of the validator.
func (s *Snapshot) LatestMessage(idx primitives.ValidatorIndex) (types.LatestMessage, bool) {
	return s.latestMessages.Get(idx)
}

// RangeLatestMessages calls f for every validator vote until f returns false.
func (s *Snapshot) RangeLatestMessages(f func(idx primitives.ValidatorIndex, msg types.LatestMessage) bool) {
	s.latestMessages.Range(f)
}

// Children returns the roots of the known blocks whose parent is root.
func (s *Snapshot) Children(root [32]byte) [][32]byte {
	c, _ := s.children.Get(root)
	return c
}

// NumBlocks returns the number of known blocks.
func (s *Snapshot) NumBlocks() int {
	return s.blocks.Len()
}

// NumLatestMessages returns the number of validators with a recorded vote.
func (s *Snapshot) NumLatestMessages() int {
	return s.latestMessages.Len()
}

// Export copies every entry of the snapshot into a CommitDelta, for persisting a
// full store or seeding a new one.
func (s *Snapshot) Export() *CommitDelta {
	d := s.emptyDelta()
	s.blocks.Range(func(k [32]byte, v interfaces.ReadOnlySignedBeaconBlock) bool {
		d.Blocks[k] = v
		return true
	})
	s.blockStates.Range(func(k [32]byte, v state.ReadOnlyBeaconState) bool {
		d.BlockStates[k] = v
		return true
	})
	s.checkpointStates.Range(func(k types.Checkpoint, v state.ReadOnlyBeaconState) bool {
		d.CheckpointStates[k] = v
		return true
	})
	s.latestMessages.Range(func(k primitives.ValidatorIndex, v types.LatestMessage) bool {
		d.LatestMessages[k] = v
		return true
	})
	return d
}

func (s *Snapshot) emptyDelta() *CommitDelta {
	return &CommitDelta{
		Seq:              s.seq,
		Time:             s.time,
		GenesisTime:      s.genesisTime,
		Justified:        s.justified,
		BestJustified:    s.bestJustified,
		Finalized:        s.finalized,
		Blocks:           map[[32]byte]interfaces.ReadOnlySignedBeaconBlock{},
		BlockStates:      map[[32]byte]state.ReadOnlyBeaconState{},
		CheckpointStates: map[types.Checkpoint]state.ReadOnlyBeaconState{},
		LatestMessages:   map[primitives.ValidatorIndex]types.LatestMessage{},
	}
}
