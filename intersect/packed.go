package intersect

import (
	"errors"
	"fmt"
	"time"

	"github.com/x448/float16"

	"github.com/helios-rt/helios/bvh"
	"github.com/helios-rt/helios/log"
	"github.com/helios-rt/helios/scene"
)

// A 16-byte packed tree record. Each bounds word holds the min half float
// in its low 16 bits and the max half in its high 16 bits for one axis.
// Internal records store childA<<16|childB in the tag; leaf records set
// tag bit 31, keep the item count in the low bits, and are immediately
// followed by one record whose 8 uint16 lanes hold the leaf's item indices.
type packedNode struct {
	bounds [3]uint32
	tag    uint32
}

const (
	packedLeafTag   uint32 = 1 << 31
	packedLeafItems        = 8
	packedNodeSize         = 16
)

// Packed is the bandwidth-optimized tree variant: bounds quantized to half
// precision and leaf items packed eight to a record, halving the per-node
// transfer size at the cost of slightly looser boxes. Bounds are rounded
// outward during quantization, so the packed traversal can only visit more
// nodes than the exact tree, never miss a hit.
type Packed struct {
	cfg    Config
	logger log.Logger

	sc    *scene.Scene
	nodes []packedNode
}

func NewPacked(cfg Config) *Packed {
	return &Packed{
		cfg:    cfg,
		logger: log.New("packed strategy"),
	}
}

func (s *Packed) Name() string { return "bvh-packed" }

func (s *Packed) Build(sc *scene.Scene) (*Layout, error) {
	s.sc = sc

	if len(sc.Primitives) > 0xFFFF {
		return nil, fmt.Errorf("intersect: packed variant addresses items as uint16; scene has %d primitives", len(sc.Primitives))
	}

	start := time.Now()
	root, stats, err := bvh.Build(sc, bvh.Options{Eps: s.cfg.BvhEps, MaxLeafItems: 4})
	if errors.Is(err, bvh.ErrSceneNotLoaded) {
		root, stats = bvh.PlaceholderTree(), &bvh.Stats{Nodes: 1, Leafs: 1}
	} else if err != nil {
		return nil, err
	}

	tree := bvh.Flatten(root)
	if err := s.pack(tree); err != nil {
		return nil, err
	}
	s.logger.Noticef("packed tree in %d ms (%d records)", time.Since(start).Nanoseconds()/1e6, len(s.nodes))

	return &Layout{
		Strategy:  s.Name(),
		Nodes:     len(s.nodes),
		Leafs:     stats.Leafs,
		MaxDepth:  stats.MaxDepth,
		DataBytes: packedNodeSize * len(s.nodes),
	}, nil
}

// Convert a flat tree to the packed layout. Every leaf contributes two
// records, so the packed id of flat node j is j plus the number of leaves
// emitted before it; child references are rewritten accordingly.
func (s *Packed) pack(tree *bvh.Tree) error {
	leafsBefore := make([]uint32, len(tree.Nodes))
	var leafs uint32
	for i := range tree.Nodes {
		leafsBefore[i] = leafs
		if tree.Nodes[i].Leaf() {
			leafs++
		}
	}
	if len(tree.Nodes)+int(leafs) > 0xFFFF {
		return fmt.Errorf("intersect: packed variant addresses records as uint16; tree needs %d records", len(tree.Nodes)+int(leafs))
	}

	s.nodes = make([]packedNode, 0, len(tree.Nodes)+int(leafs))

	for i := range tree.Nodes {
		n := &tree.Nodes[i]

		var bounds [3]uint32
		for axis := 0; axis < 3; axis++ {
			bounds[axis] = uint32(halfDown(n.Bounds.Min[axis])) |
				uint32(halfUp(n.Bounds.Max[axis]))<<16
		}

		if !n.Leaf() {
			fst := n.ChildA + leafsBefore[n.ChildA]
			snd := n.ChildB + leafsBefore[n.ChildB]
			s.nodes = append(s.nodes, packedNode{
				bounds: bounds,
				tag:    fst<<16 | snd,
			})
			continue
		}

		if n.ItemCount > packedLeafItems {
			return fmt.Errorf("intersect: leaf with %d items exceeds packed record capacity %d", n.ItemCount, packedLeafItems)
		}

		s.nodes = append(s.nodes, packedNode{
			bounds: bounds,
			tag:    packedLeafTag | n.ItemCount,
		})

		var items packedNode
		for j := uint32(0); j < n.ItemCount; j++ {
			item := tree.Items[n.ItemOffset+j] & 0xFFFF
			if j < 6 {
				items.bounds[j/2] |= item << (16 * (j % 2))
			} else {
				items.tag |= item << (16 * (j % 2))
			}
		}
		s.nodes = append(s.nodes, items)
	}

	return nil
}

func (s *Packed) Intersect(r bvh.Ray, excl int32) bvh.Hit {
	w := s.cfg.window()
	best := w.Miss()

	stack := make([]uint32, len(s.nodes))
	stack[0] = 0
	sp := 1

	for sp > 0 {
		sp--
		node := &s.nodes[stack[sp]]

		if !s.collides(node, r, w.SlabEps) {
			continue
		}

		if node.tag&packedLeafTag != 0 {
			count := node.tag &^ packedLeafTag
			items := &s.nodes[stack[sp]+1]
			for j := uint32(0); j < count; j++ {
				word := items.tag
				if j < 6 {
					word = items.bounds[j/2]
				}
				prim := (word >> (16 * (j % 2))) & 0xFFFF
				if int32(prim) == excl || int(prim) >= len(s.sc.Primitives) {
					continue
				}
				if d, ok := bvh.TriangleHit(s.sc, prim, r, w); ok && d < best.T {
					best = bvh.Hit{Prim: int32(prim), T: d}
				}
			}
			continue
		}

		stack[sp] = node.tag >> 16
		sp++
		stack[sp] = node.tag & 0xFFFF
		sp++
	}

	return best
}

// Slab test against half-precision bounds. Quantization already rounded the
// box outward, so the same eps inflation as the exact variant suffices.
func (s *Packed) collides(n *packedNode, r bvh.Ray, eps float32) bool {
	tMin := float32(-0x1p+38)
	tMax := float32(0x1p+38)

	for axis := 0; axis < 3; axis++ {
		lo := float16.Float16(n.bounds[axis] & 0xFFFF).Float32()
		hi := float16.Float16(n.bounds[axis] >> 16).Float32()

		inv := 1.0 / r.Dir[axis]
		t0 := (lo - eps - r.Origin[axis]) * inv
		t1 := (hi + eps - r.Origin[axis]) * inv
		if inv < 0 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
	}

	return tMin < tMax
}

// halfDown quantizes v to the nearest half float not greater than v.
func halfDown(v float32) float16.Float16 {
	h := float16.Fromfloat32(v)
	if h.Float32() > v {
		h = nextToward(h, false)
	}
	return h
}

// halfUp quantizes v to the nearest half float not less than v.
func halfUp(v float32) float16.Float16 {
	h := float16.Fromfloat32(v)
	if h.Float32() < v {
		h = nextToward(h, true)
	}
	return h
}

// nextToward steps one representable half float up or down, crossing zero
// correctly for the sign-magnitude representation.
func nextToward(h float16.Float16, up bool) float16.Float16 {
	bits := uint16(h)
	negative := bits&0x8000 != 0
	if up == negative {
		// Stepping toward zero in magnitude.
		if bits&0x7FFF == 0 {
			// +/-0 crosses into the smallest subnormal of the other sign.
			return float16.Float16(bits ^ 0x8001)
		}
		return float16.Float16(bits - 1)
	}
	return float16.Float16(bits + 1)
}
