package bvh

import (
	"errors"
	"time"

	"github.com/helios-rt/helios/log"
	"github.com/helios-rt/helios/scene"
	"github.com/helios-rt/helios/types"
)

// Returned by Build when the scene holds no geometry. Callers are expected
// to substitute PlaceholderTree instead of treating this as fatal.
var ErrSceneNotLoaded = errors.New("bvh: scene not loaded")

// Build parameters.
type Options struct {
	// Minimum splittable extent. A node whose longest axis is shorter than
	// Eps/2 is kept as a leaf no matter how many items it holds. The same
	// value inflates the slab test during traversal.
	Eps float32

	// Nodes with at most this many items become leaves. The packed
	// intersection strategy builds with a larger value so that leaf items
	// fit its fixed-size records.
	MaxLeafItems int
}

const (
	defaultEps          float32 = 0.02
	defaultMaxLeafItems         = 2
)

func (o Options) withDefaults() Options {
	if o.Eps <= 0 {
		o.Eps = defaultEps
	}
	if o.MaxLeafItems <= 0 {
		o.MaxLeafItems = defaultMaxLeafItems
	}
	return o
}

// A node of the owned build tree. A node either has no children and a
// non-empty item list (leaf) or exactly two children and no items
// (internal). The tree is discarded after flattening.
type Node struct {
	Left  *Node
	Right *Node

	Bounds Box
	Items  []uint32
}

// Leaf returns true if the node holds items directly.
func (n *Node) Leaf() bool {
	return n.Left == nil && n.Right == nil
}

// Build statistics collected during partitioning.
type Stats struct {
	Nodes            int
	Leafs            int
	MaxDepth         int
	PartitionedItems int
}

type builder struct {
	logger log.Logger
	opts   Options
	sc     *scene.Scene
	stats  Stats
}

// Build partitions the scene geometry with recursive spatial-median splits
// and returns the root of the owned tree. Construction is single-threaded;
// it runs once per scene load, not per frame.
func Build(sc *scene.Scene, opts Options) (*Node, *Stats, error) {
	if !sc.Loaded() {
		return nil, nil, ErrSceneNotLoaded
	}

	b := &builder{
		logger: log.New("bvh builder"),
		opts:   opts.withDefaults(),
		sc:     sc,
	}

	items := make([]uint32, len(sc.Primitives))
	for i := range items {
		items[i] = uint32(i)
	}
	root := &Node{
		Bounds: BoxFor(items, sc),
		Items:  items,
	}

	start := time.Now()
	b.split(root, 0)
	b.logger.Debugf(
		"tree build time: %d ms, maxDepth: %d, nodes: %d, leafs: %d",
		time.Since(start).Nanoseconds()/1e6,
		b.stats.MaxDepth, b.stats.Nodes, b.stats.Leafs,
	)

	return root, &b.stats, nil
}

// PlaceholderTree returns the single-leaf stand-in used when the scene holds
// no geometry: the sentinel inverted box with one dummy item. The inverted
// bounds fail every slab test, so traversing it always reports a miss.
func PlaceholderTree() *Node {
	return &Node{
		Bounds: NewBox(),
		Items:  []uint32{0},
	}
}

// Recursively partition a node. Every iteration of the retry loop either
// splits off a non-empty subset of the items or shrinks the splittable
// extent of the node; the Eps floor bounds the latter, so the recursion
// terminates even when every item shares a centroid.
func (b *builder) split(n *Node, depth int) {
	b.stats.Nodes++
	if depth > b.stats.MaxDepth {
		b.stats.MaxDepth = depth
	}

	for {
		if len(n.Items) <= b.opts.MaxLeafItems {
			b.leaf(n)
			return
		}

		d := n.Bounds.Extents()
		var axis int
		if d[0] >= d[1] && d[0] >= d[2] {
			axis = 0
		} else if d[1] >= d[2] && d[1] >= d[0] {
			axis = 1
		} else {
			axis = 2
		}

		// Too thin to separate anything; keep the current items.
		if d[axis] < b.opts.Eps*0.5 {
			b.leaf(n)
			return
		}

		fstBounds := n.Bounds
		sndBounds := n.Bounds
		mid := n.Bounds.Min[axis] + d[axis]*0.5
		fstBounds.Max[axis] = mid
		sndBounds.Min[axis] = mid

		var fstItems, sndItems []uint32
		for _, item := range n.Items {
			if fstBounds.Contains(b.sc.Centroid(item)) {
				fstItems = append(fstItems, item)
			} else {
				sndItems = append(sndItems, item)
			}
		}

		// Degenerate split: all centroids landed on one side. Collapse
		// the node bounds onto that side's candidate box and retry.
		if len(fstItems) == 0 {
			n.Bounds = sndBounds
			continue
		}
		if len(sndItems) == 0 {
			n.Bounds = fstBounds
			continue
		}

		n.Items = nil

		fst := &Node{Bounds: BoxFor(fstItems, b.sc), Items: fstItems}
		snd := &Node{Bounds: BoxFor(sndItems, b.sc), Items: sndItems}

		// Degenerate-split collapses above may have clamped this node's
		// box while item vertices still reach past it, and the slab test
		// would then cull rays that hit child geometry. Store the union
		// of the tight child boxes so an internal node always covers its
		// whole subtree.
		n.Bounds = Box{
			Min: types.MinVec3(fst.Bounds.Min, snd.Bounds.Min),
			Max: types.MaxVec3(fst.Bounds.Max, snd.Bounds.Max),
		}

		b.split(fst, depth+1)
		b.split(snd, depth+1)

		// Children attach only after both subtrees are final, so plain
		// owned fields suffice.
		n.Left = fst
		n.Right = snd
		return
	}
}

func (b *builder) leaf(n *Node) {
	b.stats.Leafs++
	b.stats.PartitionedItems += len(n.Items)
}
