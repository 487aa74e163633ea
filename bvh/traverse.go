package bvh

import (
	"github.com/helios-rt/helios/scene"
	"github.com/helios-rt/helios/types"
)

// A ray in world space. Dir does not need to be normalized; reported hit
// distances are parametric along Dir.
type Ray struct {
	Origin types.Vec3
	Dir    types.Vec3
}

// Sentinel primitive id for "no hit" and for "exclude nothing".
const NoPrim int32 = -1

// The nearest intersection found by a traversal. A miss carries Prim ==
// NoPrim and a distance beyond the trace window's TMax.
type Hit struct {
	Prim int32
	T    float32
}

// Ok returns true if the hit refers to an actual primitive.
func (h Hit) Ok() bool {
	return h.Prim != NoPrim
}

// The per-ray trace parameters shared by every intersection variant. Eps
// rejects near-parallel rays in the triangle test; SlabEps inflates every
// face of a node box during the slab test and matches the epsilon the tree
// was built with. Hits are only accepted with parametric distance inside
// [TMin, TMax].
type Window struct {
	Eps     float32
	SlabEps float32
	TMin    float32
	TMax    float32
}

// Miss returns the well-defined "no hit" sentinel for this window.
func (w Window) Miss() Hit {
	return Hit{Prim: NoPrim, T: w.TMax + 1.0}
}

// Intersect walks the flattened tree and returns the nearest hit of the ray
// against the scene geometry, ignoring excl. The walk uses an explicit LIFO
// stack sized to the node count, which over-provisions safely for any tree
// shape; nothing is allocated between invocations of the inner loop and no
// state survives the call, so any number of rays may traverse the same Tree
// concurrently.
func (t *Tree) Intersect(sc *scene.Scene, r Ray, excl int32, w Window) Hit {
	best := w.Miss()

	stack := make([]uint32, len(t.Nodes))
	stack[0] = 0
	sp := 1

	for sp > 0 {
		sp--
		node := &t.Nodes[stack[sp]]

		if !node.Bounds.intersectedBy(r, w.SlabEps) {
			continue
		}

		if node.Leaf() {
			end := node.ItemOffset + node.ItemCount
			for i := node.ItemOffset; i < end; i++ {
				prim := t.Items[i]
				if int32(prim) == excl || int(prim) >= len(sc.Primitives) {
					continue
				}
				if d, ok := TriangleHit(sc, prim, r, w); ok && d < best.T {
					best = Hit{Prim: int32(prim), T: d}
				}
			}
			continue
		}

		stack[sp] = node.ChildA
		sp++
		stack[sp] = node.ChildB
		sp++
	}

	return best
}

// Slab test against the box inflated by eps on every face, countering
// floating-point misses along shared leaf edges. Division by a zero
// direction component yields infinities that fall out of the interval
// arithmetic naturally.
func (b Box) intersectedBy(r Ray, eps float32) bool {
	tMin := float32(-maxTraceDist)
	tMax := float32(maxTraceDist)

	for axis := 0; axis < 3; axis++ {
		inv := 1.0 / r.Dir[axis]
		t0 := (b.Min[axis] - eps - r.Origin[axis]) * inv
		t1 := (b.Max[axis] + eps - r.Origin[axis]) * inv
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

// Parametric interval clamp for the slab test, mirroring the bound the
// traversal kernel uses in place of true infinities.
const maxTraceDist = 0x1p+38

// TriangleHit runs the determinant-based ray-triangle test for a single
// primitive. It rejects near-parallel rays (|det| <= w.Eps), hits outside
// the barycentric triangle and hits whose distance falls outside
// [w.TMin, w.TMax]. Both winding orders are accepted.
func TriangleHit(sc *scene.Scene, prim uint32, r Ray, w Window) (float32, bool) {
	p := sc.Primitives[prim]
	a := sc.Vertices[p.Indices[0]].Pos
	e1 := sc.Vertices[p.Indices[1]].Pos.Sub(a)
	e2 := sc.Vertices[p.Indices[2]].Pos.Sub(a)

	pv := r.Dir.Cross(e2)
	tv := r.Origin.Sub(a)
	qv := tv.Cross(e1)

	det := e1.Dot(pv)

	// Barycentric rejection is done against the unnormalized u/v to avoid
	// a divide on the reject path.
	var u, v float32
	switch {
	case det > w.Eps:
		u = tv.Dot(pv)
		if u < 0 || u > det {
			return 0, false
		}
		v = r.Dir.Dot(qv)
		if v < 0 || u+v > det {
			return 0, false
		}
	case det < -w.Eps:
		u = tv.Dot(pv)
		if u > 0 || u < det {
			return 0, false
		}
		v = r.Dir.Dot(qv)
		if v > 0 || u+v < det {
			return 0, false
		}
	default:
		return 0, false
	}

	d := e2.Dot(qv) / det
	if d < w.TMin || d > w.TMax {
		return 0, false
	}
	return d, true
}
