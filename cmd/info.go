package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/helios-rt/helios/bvh"
)

// Print layout details for a precomputed tree blob.
func AccelInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return cli.NewExitError("info: expected tree blob argument", 1)
	}

	blob, err := os.ReadFile(ctx.Args().Get(0))
	if err != nil {
		logger.Errorf("%s", err)
		return err
	}

	tree, err := bvh.Decode(blob)
	if err != nil {
		logger.Errorf("%s", err)
		return err
	}

	leafs := 0
	maxItems := uint32(0)
	for i := range tree.Nodes {
		if n := &tree.Nodes[i]; n.Leaf() {
			leafs++
			if n.ItemCount > maxItems {
				maxItems = n.ItemCount
			}
		}
	}
	root := tree.Nodes[0].Bounds

	table := tablewriter.NewWriter(os.Stdout)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Field", "Value"})
	table.Append([]string{"Nodes", fmt.Sprintf("%d (%d bytes)", len(tree.Nodes), bvh.NodeSize*len(tree.Nodes))})
	table.Append([]string{"Leafs", fmt.Sprintf("%d", leafs)})
	table.Append([]string{"Item indices", fmt.Sprintf("%d (%d bytes)", len(tree.Items), 4*len(tree.Items))})
	table.Append([]string{"Max depth", fmt.Sprintf("%d", tree.Depth())})
	table.Append([]string{"Max leaf items", fmt.Sprintf("%d", maxItems)})
	table.Append([]string{"Root bounds", fmt.Sprintf("[%.3f %.3f %.3f] - [%.3f %.3f %.3f]",
		root.Min[0], root.Min[1], root.Min[2], root.Max[0], root.Max[1], root.Max[2])})
	table.Render()

	return nil
}
