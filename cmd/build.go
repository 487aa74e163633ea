package cmd

import (
	"errors"
	"os"
	"time"

	"github.com/urfave/cli"

	"github.com/helios-rt/helios/bvh"
	"github.com/helios-rt/helios/scene"
)

// Precompute an acceleration tree for a scene and persist it.
func BuildAccel(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 2 {
		return cli.NewExitError("build: expected scene and output file arguments", 1)
	}
	sceneFile := ctx.Args().Get(0)
	outFile := ctx.Args().Get(1)

	sc, err := scene.ReadFile(sceneFile)
	if err != nil {
		logger.Errorf("%s", err)
		return err
	}

	opts := bvh.Options{
		Eps:          float32(ctx.Float64("eps")),
		MaxLeafItems: ctx.Int("max-leaf-items"),
	}

	start := time.Now()
	root, stats, err := bvh.Build(sc, opts)
	if errors.Is(err, bvh.ErrSceneNotLoaded) {
		logger.Warning("scene holds no geometry; writing placeholder tree")
		root, stats = bvh.PlaceholderTree(), &bvh.Stats{Nodes: 1, Leafs: 1}
	} else if err != nil {
		logger.Errorf("%s", err)
		return err
	}

	blob := bvh.Flatten(root).Encode()
	logger.Noticef("built tree in %d ms (%d nodes, %d leafs, depth %d)",
		time.Since(start).Nanoseconds()/1e6, stats.Nodes, stats.Leafs, stats.MaxDepth)

	if err = os.WriteFile(outFile, blob, 0644); err != nil {
		logger.Errorf("%s", err)
		return err
	}
	logger.Noticef("wrote %d bytes to %s", len(blob), outFile)
	return nil
}
