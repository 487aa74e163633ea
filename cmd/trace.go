package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli"

	"github.com/helios-rt/helios/bvh"
	"github.com/helios-rt/helios/intersect"
	"github.com/helios-rt/helios/scene"
	"github.com/helios-rt/helios/types"
)

// Cast a single ray with both the brute-force and the tree strategy and
// report what each finds.
func TraceRay(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return cli.NewExitError("trace: expected scene file argument", 1)
	}

	origin, err := parseVec3(ctx.String("origin"))
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("trace: bad origin: %v", err), 1)
	}
	dir, err := parseVec3(ctx.String("dir"))
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("trace: bad dir: %v", err), 1)
	}

	sc, err := scene.ReadFile(ctx.Args().Get(0))
	if err != nil {
		logger.Errorf("%s", err)
		return err
	}

	cfg := intersect.DefaultConfig()
	cfg.BvhEps = float32(ctx.Float64("eps"))

	brute := intersect.NewBrute(cfg)
	tree := intersect.NewTree(cfg)
	if blobFile := ctx.String("tree"); blobFile != "" {
		blob, err := os.ReadFile(blobFile)
		if err != nil {
			logger.Errorf("%s", err)
			return err
		}
		if err = tree.Preload(blob); err != nil {
			logger.Errorf("%s", err)
			return err
		}
	}

	ray := bvh.Ray{Origin: origin, Dir: dir}
	for _, s := range []intersect.Strategy{brute, tree} {
		if _, err := s.Build(sc); err != nil {
			logger.Errorf("%s", err)
			return err
		}
		hit := s.Intersect(ray, bvh.NoPrim)
		if hit.Ok() {
			logger.Noticef("[%s] hit primitive %d at distance %.6f", s.Name(), hit.Prim, hit.T)
		} else {
			logger.Noticef("[%s] no hit", s.Name())
		}
	}

	return nil
}

func parseVec3(in string) (types.Vec3, error) {
	fields := strings.Split(in, ",")
	if len(fields) != 3 {
		return types.Vec3{}, fmt.Errorf("expected x,y,z; got %q", in)
	}
	var v types.Vec3
	for i, f := range fields {
		val, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil {
			return types.Vec3{}, err
		}
		v[i] = float32(val)
	}
	return v, nil
}
