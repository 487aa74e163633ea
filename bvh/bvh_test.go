package bvh

import (
	"github.com/helios-rt/helios/scene"
	"github.com/helios-rt/helios/types"
)

// A unit cube: 8 vertices at {0,1}^3 and 12 triangles, two per face.
func cubeScene() *scene.Scene {
	verts := []types.Vec3{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
	}

	tris := [][3]uint32{
		{0, 2, 1}, {0, 3, 2}, // z = 0
		{4, 5, 6}, {4, 6, 7}, // z = 1
		{0, 1, 5}, {0, 5, 4}, // y = 0
		{3, 7, 6}, {3, 6, 2}, // y = 1
		{0, 4, 7}, {0, 7, 3}, // x = 0
		{1, 2, 6}, {1, 6, 5}, // x = 1
	}

	sc := &scene.Scene{}
	for _, v := range verts {
		sc.Vertices = append(sc.Vertices, scene.Vertex{Pos: v, Normal: types.Vec3{0, 0, 1}})
	}
	for _, t := range tris {
		sc.Primitives = append(sc.Primitives, scene.Primitive{Indices: t})
	}
	return sc
}

// n copies of the same triangle; every centroid coincides.
func coincidentScene(n int) *scene.Scene {
	sc := &scene.Scene{
		Vertices: []scene.Vertex{
			{Pos: types.Vec3{0, 0, 0}},
			{Pos: types.Vec3{1, 0, 0}},
			{Pos: types.Vec3{0, 1, 0}},
		},
	}
	for i := 0; i < n; i++ {
		sc.Primitives = append(sc.Primitives, scene.Primitive{Indices: [3]uint32{0, 1, 2}})
	}
	return sc
}

func buildFlat(sc *scene.Scene, opts Options) *Tree {
	root, _, err := Build(sc, opts)
	if err != nil {
		panic(err)
	}
	return Flatten(root)
}
