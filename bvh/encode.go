package bvh

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Blob layout, little-endian:
//
//	header:   magic u32, node count u32, item count u32
//	per node: child_a u32, child_b u32,
//	          min [3]f32, pad u32, max [3]f32, pad u32,
//	          item_offset u32, item_count u32
//	items:    item count x u32
//
// The pad words exist to satisfy the 16-byte vector alignment of the GPU
// consumer; they are written as zero and ignored when decoding.
const (
	blobMagic uint32 = 0x31485642 // "BVH1"

	headerSize = 12

	// NodeSize is the encoded size of one FlatNode record.
	NodeSize = 48
)

// Encode serializes the tree to a byte blob. Encoding the same tree twice
// yields byte-identical output.
func (t *Tree) Encode() []byte {
	blob := make([]byte, headerSize+NodeSize*len(t.Nodes)+4*len(t.Items))

	le := binary.LittleEndian
	le.PutUint32(blob[0:], blobMagic)
	le.PutUint32(blob[4:], uint32(len(t.Nodes)))
	le.PutUint32(blob[8:], uint32(len(t.Items)))

	off := headerSize
	for i := range t.Nodes {
		n := &t.Nodes[i]
		le.PutUint32(blob[off+0:], n.ChildA)
		le.PutUint32(blob[off+4:], n.ChildB)
		for c := 0; c < 3; c++ {
			le.PutUint32(blob[off+8+4*c:], math.Float32bits(n.Bounds.Min[c]))
			le.PutUint32(blob[off+24+4*c:], math.Float32bits(n.Bounds.Max[c]))
		}
		le.PutUint32(blob[off+40:], n.ItemOffset)
		le.PutUint32(blob[off+44:], n.ItemCount)
		off += NodeSize
	}

	for _, item := range t.Items {
		le.PutUint32(blob[off:], item)
		off += 4
	}

	return blob
}

// Decode parses a persisted blob back into a Tree. Any layout mismatch is a
// hard failure; partially-decoded data is never returned.
func Decode(blob []byte) (*Tree, error) {
	if len(blob) < headerSize {
		return nil, fmt.Errorf("bvh: decode: blob too short (%d bytes)", len(blob))
	}

	le := binary.LittleEndian
	if magic := le.Uint32(blob[0:]); magic != blobMagic {
		return nil, fmt.Errorf("bvh: decode: bad magic 0x%08x", magic)
	}
	nodeCount := le.Uint32(blob[4:])
	itemCount := le.Uint32(blob[8:])
	if nodeCount == 0 {
		return nil, fmt.Errorf("bvh: decode: tree has no nodes")
	}

	expLen := headerSize + NodeSize*int(nodeCount) + 4*int(itemCount)
	if len(blob) != expLen {
		return nil, fmt.Errorf("bvh: decode: expected %d byte blob; got %d", expLen, len(blob))
	}

	t := &Tree{
		Nodes: make([]FlatNode, nodeCount),
		Items: make([]uint32, itemCount),
	}

	off := headerSize
	for i := range t.Nodes {
		n := &t.Nodes[i]
		n.ChildA = le.Uint32(blob[off+0:])
		n.ChildB = le.Uint32(blob[off+4:])
		for c := 0; c < 3; c++ {
			n.Bounds.Min[c] = math.Float32frombits(le.Uint32(blob[off+8+4*c:]))
			n.Bounds.Max[c] = math.Float32frombits(le.Uint32(blob[off+24+4*c:]))
		}
		n.ItemOffset = le.Uint32(blob[off+40:])
		n.ItemCount = le.Uint32(blob[off+44:])
		off += NodeSize
	}

	for i := range t.Items {
		t.Items[i] = le.Uint32(blob[off:])
		off += 4
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Check the structural invariants of a decoded tree: leaves hold items and
// no children, internal nodes hold two valid child references, and the
// child references form a tree covering every node. Child id 0 is never a
// valid reference since the root occupies it. Cycles, shared subtrees and
// unreachable nodes are all rejected here so the traversal and depth
// walkers can rely on their fixed stack bounds.
func (t *Tree) validate() error {
	for i := range t.Nodes {
		n := &t.Nodes[i]
		if n.Leaf() {
			if n.ChildA != 0 || n.ChildB != 0 {
				return fmt.Errorf("bvh: decode: leaf %d has child references %d/%d", i, n.ChildA, n.ChildB)
			}
			if int(n.ItemOffset)+int(n.ItemCount) > len(t.Items) {
				return fmt.Errorf("bvh: decode: leaf %d item range [%d, %d) out of bounds", i, n.ItemOffset, n.ItemOffset+n.ItemCount)
			}
			continue
		}
		if n.ChildA == 0 || n.ChildB == 0 {
			return fmt.Errorf("bvh: decode: internal node %d references the root as a child", i)
		}
		if int(n.ChildA) >= len(t.Nodes) || int(n.ChildB) >= len(t.Nodes) {
			return fmt.Errorf("bvh: decode: internal node %d has child out of range (%d/%d of %d)", i, n.ChildA, n.ChildB, len(t.Nodes))
		}
	}

	// Walk from the root; every node must be reached exactly once. A repeat
	// visit means a cycle or a shared subtree, so each pop either marks a new
	// node or fails, bounding the walk itself.
	visited := make([]bool, len(t.Nodes))
	stack := make([]uint32, 1, len(t.Nodes))
	stack[0] = 0

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[id] {
			return fmt.Errorf("bvh: decode: node %d referenced more than once", id)
		}
		visited[id] = true

		if n := &t.Nodes[id]; !n.Leaf() {
			stack = append(stack, n.ChildA, n.ChildB)
		}
	}

	for i, ok := range visited {
		if !ok {
			return fmt.Errorf("bvh: decode: node %d not reachable from the root", i)
		}
	}
	return nil
}
