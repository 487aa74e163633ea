package intersect

import (
	"errors"
	"time"

	"github.com/helios-rt/helios/bvh"
	"github.com/helios-rt/helios/log"
	"github.com/helios-rt/helios/scene"
)

// Tree is the standard flattened-BVH strategy: build once, traverse with an
// explicit stack per ray.
type Tree struct {
	cfg    Config
	logger log.Logger

	sc   *scene.Scene
	tree *bvh.Tree

	// Set by Preload; skips the build step on the next Build call.
	preloaded *bvh.Tree
}

func NewTree(cfg Config) *Tree {
	return &Tree{
		cfg:    cfg,
		logger: log.New("bvh strategy"),
	}
}

func (s *Tree) Name() string { return "bvh" }

// Preload installs a tree decoded from a persisted blob so that Build skips
// reconstruction. The blob must have been produced for the exact same scene;
// nothing cross-checks geometry against it.
func (s *Tree) Preload(blob []byte) error {
	tree, err := bvh.Decode(blob)
	if err != nil {
		return err
	}
	s.preloaded = tree
	return nil
}

func (s *Tree) Build(sc *scene.Scene) (*Layout, error) {
	s.sc = sc

	if s.preloaded != nil {
		s.tree = s.preloaded
		s.logger.Noticef("using preloaded tree (%d nodes, %d item indices)", len(s.tree.Nodes), len(s.tree.Items))
		return s.layout(nil), nil
	}

	start := time.Now()
	root, stats, err := bvh.Build(sc, bvh.Options{Eps: s.cfg.BvhEps})
	if errors.Is(err, bvh.ErrSceneNotLoaded) {
		root, stats = bvh.PlaceholderTree(), &bvh.Stats{Nodes: 1, Leafs: 1}
	} else if err != nil {
		return nil, err
	}

	s.tree = bvh.Flatten(root)
	s.logger.Noticef("built tree in %d ms (%d nodes)", time.Since(start).Nanoseconds()/1e6, len(s.tree.Nodes))

	return s.layout(stats), nil
}

func (s *Tree) layout(stats *bvh.Stats) *Layout {
	l := &Layout{
		Strategy:   s.Name(),
		Nodes:      len(s.tree.Nodes),
		DataBytes:  bvh.NodeSize * len(s.tree.Nodes),
		IndexBytes: 4 * len(s.tree.Items),
	}
	if stats != nil {
		l.Leafs = stats.Leafs
		l.MaxDepth = stats.MaxDepth
	} else {
		for i := range s.tree.Nodes {
			if s.tree.Nodes[i].Leaf() {
				l.Leafs++
			}
		}
		l.MaxDepth = s.tree.Depth()
	}
	return l
}

func (s *Tree) Intersect(r bvh.Ray, excl int32) bvh.Hit {
	return s.tree.Intersect(s.sc, r, excl, s.cfg.window())
}

// FlatTree exposes the built tree for persistence tooling.
func (s *Tree) FlatTree() *bvh.Tree {
	return s.tree
}
