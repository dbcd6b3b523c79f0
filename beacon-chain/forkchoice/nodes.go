package forkchoice

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/emicklei/dot"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/store"
	"github.com/prysmaticlabs/ghost/consensus-types/primitives"
	"github.com/prysmaticlabs/ghost/encoding/bytesutil"
)

// Node describes one block of the tree rooted at the justified checkpoint.
type Node struct {
	Slot           primitives.Slot
	Root           [32]byte
	Parent         [32]byte
	Weight         uint64
	Viable         bool
	JustifiedEpoch primitives.Epoch
	FinalizedEpoch primitives.Epoch
}

// Nodes returns the blocks descending from the justified root with their fork choice
// weight and viability, ordered by slot and then root.
func Nodes(ctx context.Context, view store.ReadOnlyStore, balances []uint64) ([]*Node, error) {
	tree, err := newBlockTree(ctx, view)
	if err != nil {
		return nil, err
	}
	tree.filter(view.JustifiedCheckpoint(), view.FinalizedCheckpoint())
	tree.weigh(view, balances)

	nodes := make([]*Node, len(tree.nodes))
	for i, n := range tree.nodes {
		node := &Node{
			Slot:           n.slot,
			Root:           n.root,
			Weight:         n.weight,
			Viable:         n.viable,
			JustifiedEpoch: n.justified.Epoch,
			FinalizedEpoch: n.finalized.Epoch,
		}
		if n.parent != noParent {
			node.Parent = tree.nodes[n.parent].root
		} else if b, ok := view.Block(n.root); ok {
			node.Parent = b.Block().ParentRoot()
		}
		nodes[i] = node
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Slot != nodes[j].Slot {
			return nodes[i].Slot < nodes[j].Slot
		}
		return bytes.Compare(nodes[i].Root[:], nodes[j].Root[:]) < 0
	})
	return nodes, nil
}

// TreeGraph renders nodes as a Graphviz digraph with edges pointing from child to
// parent. The head is drawn in green and non-viable blocks in grey.
func TreeGraph(nodes []*Node, head [32]byte) string {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "RL")
	graph.Attr("labeljust", "l")

	dotNodes := make(map[[32]byte]dot.Node, len(nodes))
	for _, n := range nodes {
		root := fmt.Sprintf("%#x", bytesutil.Trunc(n.Root[:]))
		label := fmt.Sprintf("slot: %d\n root: %s\n weight: %d\n justified: %d\n finalized: %d",
			n.Slot, root, n.Weight/1e9, n.JustifiedEpoch, n.FinalizedEpoch)
		dotN := graph.Node(fmt.Sprintf("%#x", n.Root)).Box().Attr("label", label)
		switch {
		case n.Root == head:
			dotN = dotN.Attr("color", "green")
		case !n.Viable:
			dotN = dotN.Attr("color", "grey")
		}
		dotNodes[n.Root] = dotN
	}
	for _, n := range nodes {
		if parent, ok := dotNodes[n.Parent]; ok {
			graph.Edge(dotNodes[n.Root], parent)
		}
	}
	return graph.String()
}
