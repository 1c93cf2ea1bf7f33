package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
)

func gridCmd() *cli.Command {
	return &cli.Command{
		Name:      "grid",
		Usage:     "Print the non-empty cells of a collision grid",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "header", Aliases: []string{"n"}, Usage: "Collision header index"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}
			sd, _, err := loadArg(cmd, cfg, "grid <file> [--header N]")
			if err != nil {
				return err
			}

			headers := sd.CollisionHeaders()
			hi := int(cmd.Int("header"))
			if hi < 0 || hi >= len(headers) {
				return fmt.Errorf("collision header %d out of range (stage has %d)", hi, len(headers))
			}
			h := &headers[hi]
			g := &h.Grid
			if g.Cells.Len() == 0 {
				fmt.Printf("Collision header %d has no grid\n", hi)
				return nil
			}

			fmt.Printf("Grid %dx%d, start (%.2f, %.2f), step (%.2f, %.2f), %d triangles\n",
				g.StepCount.X, g.StepCount.Y, g.Start.X, g.Start.Y, g.Step.X, g.Step.Y, h.Triangles.Len())
			var sb strings.Builder
			for y := 0; y < int(g.StepCount.Y); y++ {
				for x := 0; x < int(g.StepCount.X); x++ {
					indices, _ := sd.GridCell(h, x, y)
					if len(indices) == 0 {
						continue
					}
					sb.Reset()
					for i, idx := range indices {
						if i > 0 {
							sb.WriteByte(' ')
						}
						fmt.Fprintf(&sb, "%d", idx)
					}
					fmt.Printf("  (%d, %d): %s\n", x, y, sb.String())
				}
			}
			return nil
		},
	}
}
