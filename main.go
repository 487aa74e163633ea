package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/helios-rt/helios/cmd"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "helios"
	app.Usage = "build and inspect ray intersection acceleration structures"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "build",
			Usage: "precompute an acceleration tree for a scene",
			Description: `
Parse a scene definition from a JSON file, partition its geometry into a
BVH and persist the flattened tree as a binary blob. The blob can be
supplied to the renderer to skip tree construction at load time.`,
			ArgsUsage: "scene.json out.bvh",
			Flags: []cli.Flag{
				cli.Float64Flag{
					Name:  "eps",
					Value: 0.02,
					Usage: "minimum splittable extent",
				},
				cli.IntFlag{
					Name:  "max-leaf-items",
					Value: 2,
					Usage: "largest item count kept as a leaf",
				},
			},
			Action: cmd.BuildAccel,
		},
		{
			Name:      "info",
			Usage:     "print layout details for a precomputed tree blob",
			ArgsUsage: "tree.bvh",
			Action:    cmd.AccelInfo,
		},
		{
			Name:  "trace",
			Usage: "cast a single ray against a scene and report the hit",
			Description: `
Cast one ray with both the brute-force and the tree strategy and print
what each reports. Useful for sanity-checking a precomputed blob.`,
			ArgsUsage: "scene.json",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "origin",
					Value: "0,0,0",
					Usage: "ray origin as x,y,z",
				},
				cli.StringFlag{
					Name:  "dir",
					Value: "0,0,-1",
					Usage: "ray direction as x,y,z",
				},
				cli.StringFlag{
					Name:  "tree",
					Usage: "precomputed tree blob to preload",
				},
				cli.Float64Flag{
					Name:  "eps",
					Value: 0.02,
					Usage: "minimum splittable extent",
				},
			},
			Action: cmd.TraceRay,
		},
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}
