package intersect

import (
	"github.com/helios-rt/helios/bvh"
	"github.com/helios-rt/helios/scene"
)

// Noop reports a miss for every ray. Rendering with it measures the
// fixed overhead of the surrounding pipeline.
type Noop struct {
	cfg Config
}

func NewNoop(cfg Config) *Noop {
	return &Noop{cfg: cfg}
}

func (s *Noop) Name() string { return "noop" }

func (s *Noop) Build(*scene.Scene) (*Layout, error) {
	return &Layout{Strategy: s.Name()}, nil
}

func (s *Noop) Intersect(bvh.Ray, int32) bvh.Hit {
	return s.cfg.window().Miss()
}
