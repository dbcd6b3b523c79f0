package forkchoice

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/store"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/ghost/config/params"
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
)

// ErrUnknownJustifiedRoot is returned when the justified checkpoint block is not in the store.
var ErrUnknownJustifiedRoot = errors.New("justified root is not in the store")

const noParent = -1

type treeNode struct {
	root      [32]byte
	parent    int
	slot      primitives.Slot
	children  []int
	justified types.Checkpoint
	finalized types.Checkpoint
	hasState  bool
	viable    bool
	weight    uint64
}

// blockTree is an arena holding every block that descends from the justified root.
// Nodes are stored in depth first pre-order, so a parent always precedes its children
// and walking the arena backwards visits children before parents.
type blockTree struct {
	nodes []treeNode
	index map[[32]byte]int
}

func newBlockTree(ctx context.Context, view store.ReadOnlyStore) (*blockTree, error) {
	justified := view.JustifiedCheckpoint()
	if !view.HasBlock(justified.Root) {
		return nil, errors.Wrapf(ErrUnknownJustifiedRoot, "%#x", justified.Root)
	}
	t := &blockTree{index: make(map[[32]byte]int)}
	type item struct {
		root   [32]byte
		parent int
	}
	stack := []item{{root: justified.Root, parent: noParent}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		b, ok := view.Block(it.root)
		if !ok {
			continue
		}
		n := treeNode{root: it.root, parent: it.parent, slot: b.Block().Slot()}
		if st, ok := view.BlockState(it.root); ok {
			n.hasState = true
			n.justified = st.CurrentJustifiedCheckpoint()
			n.finalized = st.FinalizedCheckpoint()
		}
		i := len(t.nodes)
		t.nodes = append(t.nodes, n)
		t.index[it.root] = i
		if it.parent != noParent {
			t.nodes[it.parent].children = append(t.nodes[it.parent].children, i)
		}
		for _, c := range view.Children(it.root) {
			stack = append(stack, item{root: c, parent: i})
		}
	}
	return t, nil
}

// filter marks the branches fork choice may select. A leaf is viable when its own
// post-state checkpoints agree with the store's; an inner node is viable when at least
// one child is.
//
// Spec pseudocode definition:
//
//	def filter_block_tree(store: Store, block_root: Root, blocks: Dict[Root, BeaconBlock]) -> bool:
//	  block = store.blocks[block_root]
//	  children = [
//	    root for root in store.blocks.keys()
//	    if store.blocks[root].parent_root == block_root
//	  ]
//
//	  # If any children branches contain expected finalized/justified checkpoints,
//	  # add to filtered block-tree and signal viability to parent.
//	  if any(children):
//	    filter_block_tree_result = [filter_block_tree(store, child, blocks) for child in children]
//	    if any(filter_block_tree_result):
//	      blocks[block_root] = block
//	      return True
//	    return False
//
//	  # If leaf block, check finalized/justified checkpoints as matching latest.
//	  head_state = store.block_states[block_root]
//
//	  correct_justified = (
//	    store.justified_checkpoint.epoch == GENESIS_EPOCH
//	    or head_state.current_justified_checkpoint == store.justified_checkpoint
//	  )
//	  correct_finalized = (
//	    store.finalized_checkpoint.epoch == GENESIS_EPOCH
//	    or head_state.finalized_checkpoint == store.finalized_checkpoint
//	  )
//	  # If expected finalized/justified, add to viable block-tree and signal viability to parent.
//	  if correct_justified and correct_finalized:
//	    blocks[block_root] = block
//	    return True
//
//	  # Otherwise, branch not viable
//	  return False
func (t *blockTree) filter(justified, finalized types.Checkpoint) {
	genesisEpoch := params.BeaconConfig().GenesisEpoch
	for i := len(t.nodes) - 1; i >= 0; i-- {
		n := &t.nodes[i]
		if len(n.children) > 0 {
			for _, c := range n.children {
				if t.nodes[c].viable {
					n.viable = true
					break
				}
			}
			continue
		}
		correctJustified := justified.Epoch == genesisEpoch || n.justified == justified
		correctFinalized := finalized.Epoch == genesisEpoch || n.finalized == finalized
		n.viable = n.hasState && correctJustified && correctFinalized
	}
}

// weigh sets every node's weight to the balance of the validators whose latest message
// is the node or one of its descendants. That is the same quantity as summing the votes
// whose ancestor at the node's slot is the node.
func (t *blockTree) weigh(view store.ReadOnlyStore, balances []uint64) {
	view.RangeLatestMessages(func(idx primitives.ValidatorIndex, msg types.LatestMessage) bool {
		i, ok := t.index[msg.Root]
		if !ok || uint64(idx) >= uint64(len(balances)) {
			return true
		}
		t.nodes[i].weight += balances[idx]
		return true
	})
	for i := len(t.nodes) - 1; i > 0; i-- {
		n := &t.nodes[i]
		if n.parent != noParent {
			t.nodes[n.parent].weight += n.weight
		}
	}
}
