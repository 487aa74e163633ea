package scene

import (
	"github.com/helios-rt/helios/types"
)

// A triangle primitive. Each primitive references three vertices by index
// and carries an opaque material id that is threaded through to the shading
// stage untouched.
type Primitive struct {
	Indices  [3]uint32
	Material uint32
}

// A mesh vertex. Position and normal are padded to 16 bytes each when
// uploaded so that the GPU consumer can treat them as vec4-aligned records.
type Vertex struct {
	Pos    types.Vec3
	Normal types.Vec3
}

// A static triangle soup. The scene is immutable once loaded; any geometry
// change produces a fresh Scene and triggers a full acceleration rebuild.
type Scene struct {
	Primitives []Primitive
	Vertices   []Vertex
}

// Loaded returns true if the scene contains any geometry. An unloaded scene
// is a valid placeholder state; builds against it yield a placeholder
// acceleration structure instead of an error surfaced to the user.
func (sc *Scene) Loaded() bool {
	return sc != nil && len(sc.Primitives) > 0
}

// Centroid returns the representative point of a primitive used when
// classifying it against a split plane: the mean of its three vertex
// positions. Build determinism depends on this formula staying fixed.
func (sc *Scene) Centroid(prim uint32) types.Vec3 {
	p := sc.Primitives[prim]
	a := sc.Vertices[p.Indices[0]].Pos
	b := sc.Vertices[p.Indices[1]].Pos
	c := sc.Vertices[p.Indices[2]].Pos
	return a.Add(b).Add(c).Mul(1.0 / 3.0)
}
