// Package forkchoice implements the LMD GHOST fork choice rule over a store view.
// Every function here is a pure function of the view it is given.
package forkchoice

import (
	"bytes"
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/store"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
	"github.com/prysmaticlabs/ghost/time/slots"
	"go.opencensus.io/trace"
)

// Head returns the canonical head block root. balances holds the effective balance of
// every validator in the justified checkpoint state, indexed by validator index.
//
// Spec pseudocode definition:
//
//	def get_head(store: Store) -> Root:
//	  # Get filtered block tree that only includes viable branches
//	  blocks = get_filtered_block_tree(store)
//	  # Execute the LMD-GHOST fork choice
//	  head = store.justified_checkpoint.root
//	  justified_slot = compute_start_slot_at_epoch(store.justified_checkpoint.epoch)
//	  while True:
//	    children = [
//	      root for root in blocks.keys()
//	      if blocks[root].parent_root == head and blocks[root].slot > justified_slot
//	    ]
//	    if len(children) == 0:
//	      return head
//	    # Sort by latest attesting balance with ties broken lexicographically
//	    head = max(children, key=lambda root: (get_latest_attesting_balance(store, root), root))
func Head(ctx context.Context, view store.ReadOnlyStore, balances []uint64) ([32]byte, error) {
	ctx, span := trace.StartSpan(ctx, "forkchoice.Head")
	defer span.End()
	start := time.Now()

	tree, err := newBlockTree(ctx, view)
	if err != nil {
		return [32]byte{}, err
	}
	justified := view.JustifiedCheckpoint()
	tree.filter(justified, view.FinalizedCheckpoint())
	tree.weigh(view, balances)

	justifiedSlot, err := slots.EpochStart(justified.Epoch)
	if err != nil {
		return [32]byte{}, errors.Wrap(err, "could not compute justified slot")
	}
	head := 0
	for {
		best := -1
		for _, c := range tree.nodes[head].children {
			n := &tree.nodes[c]
			if !n.viable || n.slot <= justifiedSlot {
				continue
			}
			if best == -1 || heavier(n, &tree.nodes[best]) {
				best = c
			}
		}
		if best == -1 {
			break
		}
		head = best
	}
	headComputeSeconds.Observe(time.Since(start).Seconds())
	span.AddAttributes(trace.Int64Attribute("slot", int64(tree.nodes[head].slot)))
	return tree.nodes[head].root, nil
}

// heavier orders by weight, then by root as a big endian byte string.
func heavier(a, b *treeNode) bool {
	if a.weight != b.weight {
		return a.weight > b.weight
	}
	return bytes.Compare(a.root[:], b.root[:]) > 0
}

// LatestAttestingBalance returns the balance of the validators whose latest message
// supports root.
//
// Spec pseudocode definition:
//
//	def get_latest_attesting_balance(store: Store, root: Root) -> Gwei:
//	  state = store.checkpoint_states[store.justified_checkpoint]
//	  active_indices = get_active_validator_indices(state, get_current_epoch(state))
//	  return Gwei(sum(
//	    state.validators[i].effective_balance for i in active_indices
//	    if (i in store.latest_messages
//	      and get_ancestor(store, store.latest_messages[i].root, store.blocks[root].slot) == root)
//	  ))
func LatestAttestingBalance(view store.ReadOnlyStore, root [32]byte, balances []uint64) uint64 {
	b, ok := view.Block(root)
	if !ok {
		return 0
	}
	slot := b.Block().Slot()
	var total uint64
	view.RangeLatestMessages(func(idx primitives.ValidatorIndex, msg types.LatestMessage) bool {
		if uint64(idx) >= uint64(len(balances)) {
			return true
		}
		if anc, ok := Ancestor(view, msg.Root, slot); ok && anc == root {
			total += balances[idx]
		}
		return true
	})
	return total
}
