package forkchoice

import (
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/store"
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
)

// Ancestor returns the block root in the chain of root at the given slot. When slot is a
// skip slot on that chain, the most recent block before it is returned. The lookup never
// goes forward: it reports not found if slot is later than root's own slot, or if root
// is unknown.
//
// Spec pseudocode definition, with the forward lookup rejected up front:
//
//	def get_ancestor(store: Store, root: Root, slot: Slot) -> Root:
//	  block = store.blocks[root]
//	  if block.slot > slot:
//	    return get_ancestor(store, block.parent_root, slot)
//	  return root
func Ancestor(view store.ReadOnlyStore, root [32]byte, slot primitives.Slot) ([32]byte, bool) {
	b, ok := view.Block(root)
	if !ok || b.Block().Slot() < slot {
		return [32]byte{}, false
	}
	return AncestorAtOrBefore(view, root, slot)
}

// AncestorAtOrBefore walks parent links from root and returns the first block whose
// slot is at or before slot. Unlike Ancestor it accepts a root older than slot, which is
// then its own answer. It reports not found when the walk leaves the known blocks.
func AncestorAtOrBefore(view store.ReadOnlyStore, root [32]byte, slot primitives.Slot) ([32]byte, bool) {
	for {
		b, ok := view.Block(root)
		if !ok {
			return [32]byte{}, false
		}
		blk := b.Block()
		if blk.Slot() <= slot {
			return root, true
		}
		root = blk.ParentRoot()
	}
}
