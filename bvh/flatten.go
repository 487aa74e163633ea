package bvh

// A fixed-size node record in the flattened tree. For internal nodes ChildA
// and ChildB hold the indices of the two children and ItemCount is 0; for
// leaves both child fields stay 0 and [ItemOffset, ItemOffset+ItemCount)
// addresses the leaf's slice of Tree.Items. Leaves are identified by
// ItemCount alone, never by the child fields, since the root also has id 0.
type FlatNode struct {
	ChildA uint32
	ChildB uint32

	Bounds Box

	ItemOffset uint32
	ItemCount  uint32
}

// Leaf returns true if the record holds items directly.
func (n *FlatNode) Leaf() bool {
	return n.ItemCount > 0
}

// The flattened tree consumed by the traversal kernel: a dense node array
// with the root at index 0 and a permutation of the primitive indices
// partitioned into per-leaf ranges. Immutable once produced; a scene change
// replaces it wholesale.
type Tree struct {
	Nodes []FlatNode
	Items []uint32
}

// Flatten serializes an owned build tree into flat arrays. Nodes are
// assigned dense ids in emit order; a parent's child fields are written
// only after the corresponding subtree has been fully emitted. The output
// is deterministic for a fixed input tree.
func Flatten(root *Node) *Tree {
	t := &Tree{
		Nodes: make([]FlatNode, 0),
		Items: make([]uint32, 0),
	}
	t.emit(root)
	return t
}

// Depth returns the maximum node depth of the tree (0 for a lone root).
// Used for diagnostics when build-time stats are unavailable, e.g. after
// decoding a persisted blob.
func (t *Tree) Depth() int {
	return t.depthBelow(0)
}

func (t *Tree) depthBelow(id uint32) int {
	n := &t.Nodes[id]
	if n.Leaf() {
		return 0
	}
	da := t.depthBelow(n.ChildA)
	db := t.depthBelow(n.ChildB)
	if db > da {
		da = db
	}
	return da + 1
}

func (t *Tree) emit(n *Node) uint32 {
	id := uint32(len(t.Nodes))
	t.Nodes = append(t.Nodes, FlatNode{
		Bounds:     n.Bounds,
		ItemOffset: uint32(len(t.Items)),
		ItemCount:  uint32(len(n.Items)),
	})
	t.Items = append(t.Items, n.Items...)

	if n.Left != nil {
		t.Nodes[id].ChildA = t.emit(n.Left)
	}
	if n.Right != nil {
		t.Nodes[id].ChildB = t.emit(n.Right)
	}

	return id
}
