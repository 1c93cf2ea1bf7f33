package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/Faultbox/stagedef/internal/logger"
	"github.com/Faultbox/stagedef/pkg/stagedef"
)

func repackCmd() *cli.Command {
	return &cli.Command{
		Name:      "repack",
		Usage:     "Load a stagedef and write it back as a freshly laid out blob",
		ArgsUsage: "<in> <out>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}
			if cmd.NArg() < 2 {
				return fmt.Errorf("usage: stagedeftool repack <in> <out>")
			}
			in, out := cmd.Args().Get(0), cmd.Args().Get(1)

			sd, err := newLoader(cfg).LoadFile(in)
			if err != nil {
				return err
			}
			data, err := stagedef.Encode(sd)
			if err != nil {
				return fmt.Errorf("encoding %s: %w", in, err)
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return err
			}
			logger.Info("repacked stagedef", zap.String("in", in), zap.String("out", out), zap.Int("bytes", len(data)))
			fmt.Printf("Wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
}
