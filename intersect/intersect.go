// Package intersect defines the pluggable intersection strategies the
// renderer selects from at startup. Every strategy builds read-only data
// from the scene once and then answers nearest-hit queries with identical
// external semantics, so variants can be swapped for accuracy checks or
// bandwidth experiments without touching the caller.
package intersect

import (
	"github.com/helios-rt/helios/bvh"
	"github.com/helios-rt/helios/scene"
)

// Trace parameters shared by every strategy.
type Config struct {
	// Epsilon threshold for the ray-triangle determinant test.
	Eps float32

	// Split granularity for tree builds; also inflates the traversal
	// slab test.
	BvhEps float32

	// Parametric window for accepted hits.
	TMin float32
	TMax float32
}

// DefaultConfig mirrors the tuning the renderer ships with.
func DefaultConfig() Config {
	return Config{
		Eps:    1e-7,
		BvhEps: 0.02,
		TMin:   0.01,
		TMax:   1000.0,
	}
}

func (c Config) window() bvh.Window {
	return bvh.Window{
		Eps:     c.Eps,
		SlabEps: c.BvhEps,
		TMin:    c.TMin,
		TMax:    c.TMax,
	}
}

// Size and shape metadata for a strategy's build data, surfaced for
// diagnostics output.
type Layout struct {
	Strategy string

	Nodes    int
	Leafs    int
	MaxDepth int

	// Byte sizes of the opaque data blobs the strategy would transfer to
	// its execution environment.
	DataBytes  int
	IndexBytes int
}

// A Strategy supplies build-time data and a traversal routine under a
// uniform contract. Build must be called exactly once before Intersect;
// strategies are mutually exclusive and never switched mid-frame. After a
// successful Build, Intersect is safe to call from any number of
// goroutines concurrently: the build data is immutable and each traversal
// owns its working state.
type Strategy interface {
	// Name of the strategy for logging and diagnostics.
	Name() string

	// Build derives the strategy's read-only data from the scene and
	// reports its layout. An unloaded scene is not an error; strategies
	// substitute a placeholder that reports misses.
	Build(sc *scene.Scene) (*Layout, error)

	// Intersect finds the nearest hit of the ray against the scene,
	// ignoring excl (bvh.NoPrim excludes nothing). A miss reports
	// bvh.NoPrim with a distance beyond the configured TMax.
	Intersect(r bvh.Ray, excl int32) bvh.Hit
}
