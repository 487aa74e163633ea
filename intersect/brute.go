package intersect

import (
	"github.com/helios-rt/helios/bvh"
	"github.com/helios-rt/helios/scene"
)

// Brute tests every primitive in the scene against every ray. No build
// data, no acceleration; it exists as the correctness oracle the tree
// variants are checked against, and as a fallback for tiny scenes.
type Brute struct {
	cfg Config
	sc  *scene.Scene
}

func NewBrute(cfg Config) *Brute {
	return &Brute{cfg: cfg}
}

func (s *Brute) Name() string { return "brute" }

func (s *Brute) Build(sc *scene.Scene) (*Layout, error) {
	s.sc = sc
	return &Layout{Strategy: s.Name()}, nil
}

func (s *Brute) Intersect(r bvh.Ray, excl int32) bvh.Hit {
	w := s.cfg.window()
	best := w.Miss()

	if !s.sc.Loaded() {
		return best
	}

	for prim := range s.sc.Primitives {
		if int32(prim) == excl {
			continue
		}
		if d, ok := bvh.TriangleHit(s.sc, uint32(prim), r, w); ok && d < best.T {
			best = bvh.Hit{Prim: int32(prim), T: d}
		}
	}

	return best
}
