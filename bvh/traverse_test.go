package bvh

import (
	"math"
	"sync"
	"testing"

	"github.com/helios-rt/helios/types"
)

func testWindow() Window {
	return Window{Eps: 1e-7, SlabEps: 0.02, TMin: 0.01, TMax: 1000}
}

func TestTraverseCube(t *testing.T) {
	sc := cubeScene()
	tree := buildFlat(sc, Options{Eps: 0.02})

	// Straight down onto the top face at z=1.
	ray := Ray{Origin: types.Vec3{0.5, 0.5, 5}, Dir: types.Vec3{0, 0, -1}}
	hit := tree.Intersect(sc, ray, NoPrim, testWindow())

	if !hit.Ok() {
		t.Fatal("expected a hit on the top face")
	}
	if math.Abs(float64(hit.T)-4.0) > 1e-3 {
		t.Fatalf("expected hit at distance 4; got %g", hit.T)
	}
	if hit.Prim != 2 && hit.Prim != 3 {
		t.Fatalf("expected one of the top-face primitives (2 or 3); got %d", hit.Prim)
	}
}

func TestTraverseExcludedPrimitive(t *testing.T) {
	sc := cubeScene()
	tree := buildFlat(sc, Options{Eps: 0.02})
	w := testWindow()

	// Off the face diagonal so exactly one top triangle covers the point.
	ray := Ray{Origin: types.Vec3{0.3, 0.4, 5}, Dir: types.Vec3{0, 0, -1}}
	first := tree.Intersect(sc, ray, NoPrim, w)
	if !first.Ok() || math.Abs(float64(first.T)-4.0) > 1e-3 {
		t.Fatalf("expected first hit at distance 4; got %+v", first)
	}

	// Excluding the entry primitive must fall through to the bottom face.
	second := tree.Intersect(sc, ray, first.Prim, w)
	if !second.Ok() {
		t.Fatal("expected a second hit past the excluded primitive")
	}
	if second.Prim == first.Prim {
		t.Fatalf("excluded primitive %d reported again", first.Prim)
	}
	if math.Abs(float64(second.T)-5.0) > 1e-3 {
		t.Fatalf("expected bottom-face hit at distance 5; got %g", second.T)
	}
}

func TestTraverseMiss(t *testing.T) {
	sc := cubeScene()
	tree := buildFlat(sc, Options{Eps: 0.02})
	w := testWindow()

	ray := Ray{Origin: types.Vec3{0.5, 0.5, 5}, Dir: types.Vec3{0, 0, 1}}
	hit := tree.Intersect(sc, ray, NoPrim, w)

	if hit.Ok() {
		t.Fatalf("expected a miss; hit %d", hit.Prim)
	}
	if hit.T <= w.TMax {
		t.Fatalf("expected the miss sentinel beyond TMax; got %g", hit.T)
	}
}

func TestTraverseWindowClamp(t *testing.T) {
	sc := cubeScene()
	tree := buildFlat(sc, Options{Eps: 0.02})

	// The cube sits 4 units away; a window ending at 3 must miss it.
	w := Window{Eps: 1e-7, SlabEps: 0.02, TMin: 0.01, TMax: 3}
	ray := Ray{Origin: types.Vec3{0.5, 0.5, 5}, Dir: types.Vec3{0, 0, -1}}
	if hit := tree.Intersect(sc, ray, NoPrim, w); hit.Ok() {
		t.Fatalf("expected a miss outside the trace window; hit %d at %g", hit.Prim, hit.T)
	}
}

func TestTraversePlaceholder(t *testing.T) {
	sc := cubeScene()
	tree := Flatten(PlaceholderTree())
	w := testWindow()

	ray := Ray{Origin: types.Vec3{0.5, 0.5, 5}, Dir: types.Vec3{0, 0, -1}}
	if hit := tree.Intersect(sc, ray, NoPrim, w); hit.Ok() {
		t.Fatal("expected the placeholder tree to report a miss")
	}
}

func TestTraverseConcurrent(t *testing.T) {
	sc := cubeScene()
	tree := buildFlat(sc, Options{Eps: 0.02})
	w := testWindow()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			ray := Ray{
				Origin: types.Vec3{0.1 + 0.1*float32(g), 0.45, 5},
				Dir:    types.Vec3{0, 0, -1},
			}
			for i := 0; i < 100; i++ {
				hit := tree.Intersect(sc, ray, NoPrim, w)
				if !hit.Ok() || math.Abs(float64(hit.T)-4.0) > 1e-3 {
					t.Errorf("goroutine %d: expected stable hit at distance 4; got %+v", g, hit)
					return
				}
			}
		}(g)
	}
	wg.Wait()
}
