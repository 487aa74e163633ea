package bvh

import (
	"testing"

	"github.com/helios-rt/helios/scene"
	"github.com/helios-rt/helios/types"
)

func TestBuildCube(t *testing.T) {
	root, stats, err := Build(cubeScene(), Options{Eps: 0.02})
	if err != nil {
		t.Fatal(err)
	}

	if root.Bounds.Min != (types.Vec3{0, 0, 0}) || root.Bounds.Max != (types.Vec3{1, 1, 1}) {
		t.Fatalf("expected root box [0,0,0]-[1,1,1]; got %v-%v", root.Bounds.Min, root.Bounds.Max)
	}
	if stats.PartitionedItems != 12 {
		t.Fatalf("expected 12 partitioned items; got %d", stats.PartitionedItems)
	}

	checkNode(t, root)
	checkBounds(t, root)
}

// Walk the owned tree checking the leaf/internal structural invariants.
func checkNode(t *testing.T, n *Node) {
	if n.Leaf() {
		if len(n.Items) == 0 {
			t.Fatal("leaf with empty item list")
		}
		return
	}

	if n.Left == nil || n.Right == nil {
		t.Fatal("internal node missing a child")
	}
	if len(n.Items) != 0 {
		t.Fatalf("internal node still holds %d items", len(n.Items))
	}

	checkNode(t, n.Left)
	checkNode(t, n.Right)
}

// Check that child bounds stay inside the parent bounds. Internal nodes
// store the union of their child boxes, so this holds even for scenes
// that trigger degenerate-split collapses.
func checkBounds(t *testing.T, n *Node) {
	if n.Leaf() {
		return
	}

	for _, child := range []*Node{n.Left, n.Right} {
		for axis := 0; axis < 3; axis++ {
			if child.Bounds.Min[axis] < n.Bounds.Min[axis]-1e-4 || child.Bounds.Max[axis] > n.Bounds.Max[axis]+1e-4 {
				t.Fatalf("child bounds %v-%v exceed parent %v-%v",
					child.Bounds.Min, child.Bounds.Max, n.Bounds.Min, n.Bounds.Max)
			}
		}
		checkBounds(t, child)
	}
}

func TestBuildLeafThreshold(t *testing.T) {
	root, stats, err := Build(cubeScene(), Options{Eps: 0.02, MaxLeafItems: 12})
	if err != nil {
		t.Fatal(err)
	}
	if !root.Leaf() {
		t.Fatal("expected the whole scene to fit in one leaf")
	}
	if stats.Nodes != 1 || stats.Leafs != 1 {
		t.Fatalf("expected single-node stats; got %+v", *stats)
	}
}

func TestBuildCoincidentCentroids(t *testing.T) {
	// All centroids coincide, so no split can separate the items. The
	// epsilon floor must end the recursion instead of looping.
	root, stats, err := Build(coincidentScene(64), Options{Eps: 0.02})
	if err != nil {
		t.Fatal(err)
	}
	checkNode(t, root)
	if stats.PartitionedItems != 64 {
		t.Fatalf("expected all 64 items partitioned; got %d", stats.PartitionedItems)
	}
}

func TestBuildDegeneratePrimitive(t *testing.T) {
	// A single zero-volume triangle: every split candidate is degenerate.
	sc := &scene.Scene{
		Vertices: []scene.Vertex{
			{Pos: types.Vec3{0.5, 0.5, 0.5}},
		},
	}
	for i := 0; i < 4; i++ {
		sc.Primitives = append(sc.Primitives, scene.Primitive{Indices: [3]uint32{0, 0, 0}})
	}

	root, _, err := Build(sc, Options{Eps: 0.02})
	if err != nil {
		t.Fatal(err)
	}
	if !root.Leaf() {
		t.Fatal("expected a zero-extent node to stay a leaf")
	}
	if len(root.Items) != 4 {
		t.Fatalf("expected 4 items in the leaf; got %d", len(root.Items))
	}
}

func TestBuildCollapsesEmptySplits(t *testing.T) {
	// Both triangles cluster near the origin while a stray vertex drags
	// the root box out to x=8, so the first midpoint split leaves one side
	// empty and the builder must collapse bounds and retry.
	sc := &scene.Scene{
		Vertices: []scene.Vertex{
			{Pos: types.Vec3{0, 0, 0}},
			{Pos: types.Vec3{1, 0, 0}},
			{Pos: types.Vec3{0, 1, 0}},
			{Pos: types.Vec3{0, 0, 1}},
			{Pos: types.Vec3{8, 0.1, 0.1}},
		},
	}
	sc.Primitives = []scene.Primitive{
		{Indices: [3]uint32{0, 1, 2}},
		{Indices: [3]uint32{0, 2, 3}},
		{Indices: [3]uint32{0, 1, 4}},
	}

	root, _, err := Build(sc, Options{Eps: 0.02, MaxLeafItems: 1})
	if err != nil {
		t.Fatal(err)
	}
	checkNode(t, root)
	checkBounds(t, root)
}

func TestBuildEmptyScene(t *testing.T) {
	if _, _, err := Build(&scene.Scene{}, Options{}); err != ErrSceneNotLoaded {
		t.Fatalf("expected ErrSceneNotLoaded; got %v", err)
	}

	ph := PlaceholderTree()
	if !ph.Leaf() || len(ph.Items) != 1 {
		t.Fatal("expected a single-item placeholder leaf")
	}
	if ph.Bounds.Min[0] <= ph.Bounds.Max[0] {
		t.Fatal("expected the placeholder to keep the inverted sentinel box")
	}
}
