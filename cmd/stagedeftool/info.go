package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/Faultbox/stagedef/internal/report"
)

func infoCmd() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Show a stagedef summary",
		ArgsUsage: "<file>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}
			sd, path, err := loadArg(cmd, cfg, "info <file>")
			if err != nil {
				return err
			}
			st, err := os.Stat(path)
			if err != nil {
				return err
			}
			r := report.Build(sd, int(st.Size()))

			fmt.Printf("Stagedef: %s\n", path)
			fmt.Printf("Size:     %d bytes (native %d bytes)\n", r.BlobBytes, r.NativeBytes)
			if r.Start != nil {
				fmt.Printf("Start:    (%.2f, %.2f, %.2f)\n", r.Start.Position[0], r.Start.Position[1], r.Start.Position[2])
			}
			if r.FalloutY != nil {
				fmt.Printf("Fallout:  y = %.2f\n", *r.FalloutY)
			}
			fmt.Println()

			fmt.Printf("Collision headers: %d\n", len(r.CollisionHeaders))
			for _, h := range r.CollisionHeaders {
				fmt.Printf("  [%d] %d triangles", h.Index, h.Triangles)
				if h.Grid != nil {
					fmt.Printf(", grid %dx%d (%d non-empty cells, longest %d)",
						h.Grid.StepCount[0], h.Grid.StepCount[1], h.Grid.NonEmptyCells, h.Grid.LongestCell)
				}
				if h.Animated {
					fmt.Printf(", animated (%s, %s)", h.AnimType, h.PlaybackState)
				}
				fmt.Println()
			}
			fmt.Println()

			fmt.Println("Pools:")
			for _, name := range poolOrder(r.Pools) {
				fmt.Printf("  %-24s %d\n", name, r.Pools[name])
			}
			if len(r.Models) > 0 {
				fmt.Println()
				fmt.Println("Models:")
				for _, m := range r.Models {
					fmt.Printf("  %-10s %s\n", m.Kind, m.Name)
				}
			}
			return nil
		},
	}
}
