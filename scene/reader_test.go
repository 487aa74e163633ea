package scene

import (
	"strings"
	"testing"

	"github.com/helios-rt/helios/types"
)

func TestReadScene(t *testing.T) {
	payload := `{
		"vertices": [
			{"pos": [0, 0, 0], "normal": [0, 0, 1]},
			{"pos": [1, 0, 0], "normal": [0, 0, 1]},
			{"pos": [0, 1, 0], "normal": [0, 0, 1]}
		],
		"primitives": [
			{"indices": [0, 1, 2], "material": 7}
		]
	}`

	sc, err := Read(strings.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}

	if !sc.Loaded() {
		t.Fatal("expected scene to report loaded")
	}
	if len(sc.Vertices) != 3 || len(sc.Primitives) != 1 {
		t.Fatalf("expected 3 vertices and 1 primitive; got %d and %d", len(sc.Vertices), len(sc.Primitives))
	}
	if sc.Primitives[0].Material != 7 {
		t.Fatalf("expected material 7; got %d", sc.Primitives[0].Material)
	}
	if sc.Vertices[1].Pos != (types.Vec3{1, 0, 0}) {
		t.Fatalf("unexpected vertex position %v", sc.Vertices[1].Pos)
	}
}

func TestReadSceneRejectsMalformed(t *testing.T) {
	specs := []struct {
		desc    string
		payload string
	}{
		{
			"not json",
			`{"vertices": [`,
		},
		{
			"short position",
			`{"vertices": [{"pos": [0, 0], "normal": [0, 0, 1]}], "primitives": []}`,
		},
		{
			"long normal",
			`{"vertices": [{"pos": [0, 0, 0], "normal": [0, 0, 1, 0]}], "primitives": []}`,
		},
		{
			"short index list",
			`{"vertices": [{"pos": [0, 0, 0], "normal": [0, 0, 1]}], "primitives": [{"indices": [0, 0], "material": 0}]}`,
		},
		{
			"unknown vertex",
			`{"vertices": [{"pos": [0, 0, 0], "normal": [0, 0, 1]}], "primitives": [{"indices": [0, 0, 9], "material": 0}]}`,
		},
	}

	for _, spec := range specs {
		if _, err := Read(strings.NewReader(spec.payload)); err == nil {
			t.Fatalf("%s: expected a parse error", spec.desc)
		}
	}
}

func TestCentroid(t *testing.T) {
	sc := &Scene{
		Vertices: []Vertex{
			{Pos: types.Vec3{0, 0, 0}},
			{Pos: types.Vec3{3, 0, 0}},
			{Pos: types.Vec3{0, 3, 0}},
		},
		Primitives: []Primitive{
			{Indices: [3]uint32{0, 1, 2}},
		},
	}

	c := sc.Centroid(0)
	if c != (types.Vec3{1, 1, 0}) {
		t.Fatalf("expected centroid (1,1,0); got %v", c)
	}
}

func TestUnloadedScene(t *testing.T) {
	var nilScene *Scene
	if nilScene.Loaded() {
		t.Fatal("nil scene must not report loaded")
	}
	if (&Scene{}).Loaded() {
		t.Fatal("empty scene must not report loaded")
	}
}
