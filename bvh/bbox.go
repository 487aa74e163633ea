package bvh

import (
	"math"

	"github.com/helios-rt/helios/scene"
	"github.com/helios-rt/helios/types"
)

// An axis-aligned bounding box.
type Box struct {
	Min types.Vec3
	Max types.Vec3
}

// NewBox returns the inverted sentinel box (min at +inf, max at -inf). It is
// the identity element for Include and the placeholder bounds of an
// empty/unloaded scene.
func NewBox() Box {
	return Box{
		Min: types.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: types.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

// BoxFor accumulates the extrema of every vertex of every listed primitive.
// An empty item list yields the inverted sentinel box.
func BoxFor(items []uint32, sc *scene.Scene) Box {
	b := NewBox()
	for _, item := range items {
		prim := sc.Primitives[item]
		for _, vi := range prim.Indices {
			b.Include(sc.Vertices[vi].Pos)
		}
	}
	return b
}

// Include grows the box to cover the given point.
func (b *Box) Include(p types.Vec3) {
	b.Min = types.MinVec3(b.Min, p)
	b.Max = types.MaxVec3(b.Max, p)
}

// Contains tests componentwise min <= p <= max, inclusive on both ends.
func (b Box) Contains(p types.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// Extents returns the per-axis side lengths.
func (b Box) Extents() types.Vec3 {
	return b.Max.Sub(b.Min)
}
